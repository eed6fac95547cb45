// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exam

import "context"

// ListQuery is the storage predicate built from the authorization scope plus
// the caller's filter.
type ListQuery struct {
	SchoolID   string
	StudentIDs []string
	SubjectID  string
	ExamName   string
	Limit      int
	Offset     int
}

type Repository interface {
	ListResults(ctx context.Context, q ListQuery) ([]*Result, int, error)
	GetResult(ctx context.Context, id string) (*Result, error)

	// CreateResult inserts one score. A student has at most one result per
	// (subject, exam name); violations surface as a Conflict.
	CreateResult(ctx context.Context, r *Result) error

	UpdateResult(ctx context.Context, r *Result) error
	DeleteResult(ctx context.Context, id string) error
}
