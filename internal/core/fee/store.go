// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee

import (
	"context"
	"time"
)

// ListQuery is the storage-level predicate built by the service from the
// authorization scope plus the caller's filter. A nil StudentIDs slice means
// no per-student restriction; an empty SchoolID means no tenant restriction
// (platform super admin only).
type ListQuery struct {
	SchoolID   string
	StudentIDs []string
	Status     Status

	// Today anchors the effective-status filter. The service clock supplies
	// it so the SQL predicate and [EffectiveStatus] agree on the same UTC day
	// regardless of the database session timezone.
	Today time.Time

	Limit  int
	Offset int
}

type Repository interface {
	ListFees(ctx context.Context, q ListQuery) ([]*Fee, int, error)
	GetFee(ctx context.Context, id string) (*Fee, error)
	CreateFee(ctx context.Context, f *Fee) error
	UpdateFee(ctx context.Context, f *Fee) error
	DeleteFee(ctx context.Context, id string) error
}
