// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fee manages student fee records and their lifecycle.

A fee's persisted status is only ever PENDING (creation) or PAID (explicit
mark-paid). OVERDUE is a derived display value computed at read time from the
due date — the read path never rewrites storage. [EffectiveStatus] is the
single source of truth for that derivation; every read (single fetch, list,
report) goes through it so the stored value and the displayed value can
diverge without drift.
*/
package fee

import "time"

// Status is a fee lifecycle state.
type Status string

const (
	// StatusPending is the stored state of every newly created fee.
	StatusPending Status = "pending"

	// StatusOverdue is derived, never persisted by a read.
	StatusOverdue Status = "overdue"

	// StatusPaid is terminal. A paid fee never regresses.
	StatusPaid Status = "paid"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusOverdue || s == StatusPaid
}

// Fee is a single payable item assigned to a student.
type Fee struct {
	ID        string  `json:"id"`
	SchoolID  string  `json:"school_id"`
	StudentID string  `json:"student_id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	DueDate   time.Time `json:"due_date"`

	// Status holds the stored value when loaded from the database and is
	// overwritten with the effective value by [Fee.Reconcile] before the
	// record leaves the service layer.
	Status Status `json:"status"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Reconcile replaces the in-memory status with the effective status for the
// given day. The persisted row is untouched.
func (f *Fee) Reconcile(today time.Time) {
	f.Status = EffectiveStatus(f.Status, f.DueDate, today)
}

// EffectiveStatus recomputes a fee's display status from its stored status
// and due date. It is a pure function:
//
//   - PAID is terminal and never downgraded, regardless of the due date.
//   - Otherwise a due date before today (day granularity, time-of-day
//     ignored) yields OVERDUE.
//   - Otherwise PENDING.
func EffectiveStatus(stored Status, dueDate, today time.Time) Status {
	if stored == StatusPaid {
		return StatusPaid
	}

	if dateOnly(dueDate).Before(dateOnly(today)) {
		return StatusOverdue
	}

	return StatusPending
}

// dateOnly truncates a timestamp to midnight UTC so comparisons work at day
// granularity.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Filter holds the parameters for a paginated fee search.
type Filter struct {
	StudentID string // explicit student filter, verified by the scope engine
	Status    Status // effective-status filter (overdue matches pending rows past due)
}

// Global field names for validation
const (
	FieldStudentID = "student_id"
	FieldTitle     = "title"
	FieldAmount    = "amount"
	FieldDueDate   = "due_date"
	FieldStatus    = "status"
)
