// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report

import (
	"context"
	"time"

	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
)

// AttendanceQuery selects the attendance records feeding one report.
type AttendanceQuery struct {
	SchoolID   string
	StudentIDs []string
	ClassID    string
	From       time.Time
	To         time.Time
}

// FeeQuery selects the fees feeding one report.
type FeeQuery struct {
	SchoolID   string
	StudentIDs []string
}

// ExamQuery selects the exam results feeding one report.
type ExamQuery struct {
	SchoolID   string
	StudentIDs []string
	SubjectID  string
	ExamName   string
}

// Repository fetches the scoped record sets reports aggregate over. Unlike
// the per-resource list stores these reads are unpaginated: a report covers
// the whole scoped set in one pass, in insertion order.
type Repository interface {
	AttendanceRecords(ctx context.Context, q AttendanceQuery) ([]*attendance.Record, error)
	Fees(ctx context.Context, q FeeQuery) ([]*fee.Fee, error)
	ExamResults(ctx context.Context, q ExamQuery) ([]*exam.Result, error)
}
