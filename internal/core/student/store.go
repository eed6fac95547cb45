// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import "context"

// ListQuery is the storage predicate built from the authorization scope plus
// the caller's filter. Nil IDs means no per-record restriction.
type ListQuery struct {
	SchoolID string
	IDs      []string
	ClassID  string
	Query    string
	Limit    int
	Offset   int
}

// NewAccount carries the login account created together with a student
// profile, inside the same transaction.
type NewAccount struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
}

// SectionInfo describes a section's position in the class/school chain.
type SectionInfo struct {
	ClassID  string
	SchoolID string
}

type Repository interface {
	ListStudents(ctx context.Context, q ListQuery) ([]*Student, int, error)
	GetStudent(ctx context.Context, id string) (*Student, error)

	// CreateStudentWithAccount inserts the account and the student profile
	// (and an optional parent link) atomically. Either everything becomes
	// visible or nothing does.
	CreateStudentWithAccount(ctx context.Context, account NewAccount, s *Student, parentID string) error

	UpdateStudent(ctx context.Context, s *Student) error

	// DeleteStudent removes the parent links, the profile, and the owning
	// account in one transaction.
	DeleteStudent(ctx context.Context, id, userID string) error

	// Lookups for enrollment-chain verification.
	ClassSchool(ctx context.Context, classID string) (string, error)
	SectionChain(ctx context.Context, sectionID string) (SectionInfo, error)
	ParentSchool(ctx context.Context, parentID string) (string, error)
}
