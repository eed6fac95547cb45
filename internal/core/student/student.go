// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package student manages student enrollment and profiles.

A student profile and its login account are created and deleted together,
inside one transaction — a reader must never observe a user account whose
student row does not exist yet, or vice versa. Parent links are non-owning:
detaching a parent never deletes the student.
*/
package student

import "time"

// Student is an enrolled pupil of one school.
type Student struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	SchoolID string `json:"school_id"`

	// ClassID and SectionID form the enrollment chain. The section always
	// belongs to the class, and both belong to the student's school.
	ClassID   string `json:"class_id"`
	SectionID string `json:"section_id"`

	// RollNumber is unique within the class.
	RollNumber int `json:"roll_number"`

	// Denormalized from the owning account for display.
	FullName string `json:"full_name"`
	Email    string `json:"email"`

	ParentIDs []string `json:"parent_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated student search.
type Filter struct {
	ClassID string // verified against the caller's school by the scope engine
	Query   string // ILIKE search against the student's name
}

// Global field names for validation
const (
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldFullName   = "full_name"
	FieldClassID    = "class_id"
	FieldSectionID  = "section_id"
	FieldRollNumber = "roll_number"
	FieldParentID   = "parent_id"
)
