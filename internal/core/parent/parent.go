// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package parent manages guardian accounts and their links to students.
//
// The parent-student relation is many-to-many and non-owning in both
// directions: unlinking or deleting a parent never touches the student, and
// deleting a student only removes the link rows.
package parent

import "time"

// Parent is a guardian registered with one school.
type Parent struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	SchoolID string `json:"school_id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`

	// StudentIDs lists the linked children, in link order.
	StudentIDs []string `json:"student_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated parent search.
type Filter struct {
	Query string // ILIKE search against the parent's name
}

const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldStudentID = "student_id"
)
