// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package school

import "context"

// ListQuery is the storage predicate for the school directory.
type ListQuery struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	// Schools.
	ListSchools(ctx context.Context, q ListQuery) ([]*School, int, error)
	GetSchool(ctx context.Context, id string) (*School, error)
	CreateSchool(ctx context.Context, s *School) error
	UpdateSchool(ctx context.Context, s *School) error
	DeleteSchool(ctx context.Context, id string) error

	// Classes.
	ListClasses(ctx context.Context, schoolID string) ([]*Class, error)
	GetClass(ctx context.Context, id string) (*Class, error)
	CreateClass(ctx context.Context, c *Class) error
	DeleteClass(ctx context.Context, id string) error

	// Sections.
	ListSections(ctx context.Context, classID string) ([]*Section, error)
	CreateSection(ctx context.Context, s *Section) error
	DeleteSection(ctx context.Context, id string) error

	// Subjects.
	ListSubjects(ctx context.Context, classID string) ([]*Subject, error)
	CreateSubject(ctx context.Context, s *Subject) error
	DeleteSubject(ctx context.Context, id string) error
}
