// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package attendance records daily student presence.
//
// One record exists per student per calendar day; marking the same day twice
// is a conflict, and corrections go through the update path instead.
package attendance

import "time"

// Status is the recorded presence state for one day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// IsValid reports whether the value is a known attendance status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Record is one student's attendance for one day.
type Record struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	StudentID string `json:"student_id"`

	// Date is day-granular; the time portion is always midnight UTC.
	Date   time.Time `json:"date"`
	Status Status    `json:"status"`

	// MarkedBy is the user who recorded the entry.
	MarkedBy string `json:"marked_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated attendance query.
type Filter struct {
	StudentID string
	Status    Status
	From      time.Time
	To        time.Time
}

const (
	FieldStudentID = "student_id"
	FieldDate      = "date"
	FieldStatus    = "status"
)
