// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package teacher manages teaching staff and their subject assignments.
//
// Like students, a teacher profile owns a login account: both are created
// and deleted in one transaction. A subject is taught by at most one teacher
// at a time, so assigning an already-assigned subject is a conflict rather
// than a silent reassignment.
package teacher

import "time"

// Teacher is a member of one school's teaching staff.
type Teacher struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	SchoolID string `json:"school_id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`

	// SubjectIDs lists the subjects currently assigned to this teacher.
	SubjectIDs []string `json:"subject_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated teacher search.
type Filter struct {
	Query string // ILIKE search against the teacher's name
}

const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldSubjectID = "subject_id"
)
