// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package support manages help tickets raised by the school's users.
//
// Visibility is creator-bound below admin: teachers, students, and parents
// see only the tickets they raised, while school admins see the whole
// school's queue and drive the status workflow.
package support

import "time"

// Status is a ticket's position in the handling workflow.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// IsValid reports whether the value is a known ticket status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// workflowRank orders the handling workflow:
// open → in_progress → resolved → closed.
func (s Status) workflowRank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	case StatusClosed:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
// Stages may be skipped (open straight to resolved), but a ticket never moves
// backwards: reopening means raising a new ticket.
func (s Status) CanTransitionTo(next Status) bool {
	return next.workflowRank() > s.workflowRank()
}

// Ticket is one support request.
type Ticket struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`

	// CreatedBy is the raising user; StudentID names the student the ticket
	// concerns. Parents must always name one of their linked students.
	CreatedBy string `json:"created_by"`
	StudentID string `json:"student_id,omitempty"`

	Subject string `json:"subject"`
	Body    string `json:"body"`
	Status  Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	FieldSubject   = "subject"
	FieldBody      = "body"
	FieldStudentID = "student_id"
	FieldStatus    = "status"
)
