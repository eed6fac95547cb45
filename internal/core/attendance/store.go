// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attendance

import (
	"context"
	"time"
)

// ListQuery is the storage predicate built from the authorization scope plus
// the caller's filter.
type ListQuery struct {
	SchoolID   string
	StudentIDs []string
	Status     Status
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	ListRecords(ctx context.Context, q ListQuery) ([]*Record, int, error)
	GetRecord(ctx context.Context, id string) (*Record, error)

	// CreateRecord inserts one day's entry. The (student, date) pair is
	// unique; violations surface as a Conflict.
	CreateRecord(ctx context.Context, r *Record) error

	UpdateRecord(ctx context.Context, r *Record) error
	DeleteRecord(ctx context.Context, id string) error
}
