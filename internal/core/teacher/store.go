// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package teacher

import "context"

// ListQuery is the storage predicate for the teacher list.
type ListQuery struct {
	SchoolID string
	Query    string
	Limit    int
	Offset   int
}

// NewAccount carries the login account created with a teacher profile.
type NewAccount struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
}

// SubjectAssignment describes a subject's current tenancy and holder.
type SubjectAssignment struct {
	SchoolID  string
	TeacherID string // empty when unassigned
}

type Repository interface {
	ListTeachers(ctx context.Context, q ListQuery) ([]*Teacher, int, error)
	GetTeacher(ctx context.Context, id string) (*Teacher, error)

	// CreateTeacherWithAccount inserts the account and the profile atomically.
	CreateTeacherWithAccount(ctx context.Context, account NewAccount, t *Teacher) error

	// DeleteTeacher clears the teacher's subject assignments, then removes
	// the profile and the owning account, all in one transaction.
	DeleteTeacher(ctx context.Context, id, userID string) error

	// SubjectAssignment reports who currently teaches the subject.
	SubjectAssignment(ctx context.Context, subjectID string) (SubjectAssignment, error)

	// AssignSubject sets the subject's teacher; UnassignSubject clears it.
	AssignSubject(ctx context.Context, subjectID, teacherID string) error
	UnassignSubject(ctx context.Context, subjectID string) error
}
