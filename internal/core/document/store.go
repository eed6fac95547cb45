// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import "context"

// ListQuery is the storage predicate built from the authorization scope.
type ListQuery struct {
	SchoolID   string
	StudentIDs []string
	Limit      int
	Offset     int
}

type Repository interface {
	ListDocuments(ctx context.Context, q ListQuery) ([]*Document, int, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	CreateDocument(ctx context.Context, d *Document) error
	DeleteDocument(ctx context.Context, id string) error
}
