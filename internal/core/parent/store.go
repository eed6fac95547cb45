// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package parent

import "context"

// ListQuery is the storage predicate for the parent list.
type ListQuery struct {
	SchoolID string
	Query    string
	Limit    int
	Offset   int
}

// NewAccount carries the login account created with a parent profile.
type NewAccount struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
}

type Repository interface {
	ListParents(ctx context.Context, q ListQuery) ([]*Parent, int, error)
	GetParent(ctx context.Context, id string) (*Parent, error)

	// CreateParentWithAccount inserts the account and the profile atomically.
	CreateParentWithAccount(ctx context.Context, account NewAccount, p *Parent) error

	// DeleteParent removes the link rows, the profile, and the owning
	// account in one transaction. Linked students are untouched.
	DeleteParent(ctx context.Context, id, userID string) error

	// LinkStudent and UnlinkStudent manage the parent-student relation.
	// Linking twice violates the primary key and surfaces as a Conflict.
	LinkStudent(ctx context.Context, parentID, studentID string) error
	UnlinkStudent(ctx context.Context, parentID, studentID string) error

	// StudentSchool reports which school a student belongs to.
	StudentSchool(ctx context.Context, studentID string) (string, error)
}
