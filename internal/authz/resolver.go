// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import "context"

// Resolver answers "who is this person" — never "what may they do".
//
// It resolves role-specific linkage against the record store: a student's own
// profile id, a parent's linked student ids, a teacher's profile id, and the
// school ownership of filter targets. Authorization decisions live in
// [Engine], which consumes these lookups.
type Resolver interface {
	// StudentSelf returns the student profile id owned by the given user.
	// Returns NotFound when the user has no student profile.
	StudentSelf(ctx context.Context, userID string) (string, error)

	// TeacherSelf returns the teacher profile id owned by the given user.
	// Returns NotFound when the user has no teacher profile.
	TeacherSelf(ctx context.Context, userID string) (string, error)

	// LinkedStudents returns the student ids linked to the given user's
	// parent profile. A parent with no linked students yields an empty,
	// non-nil slice — that is a valid (empty) scope, not an error. A user
	// without a parent profile yields NotFound.
	LinkedStudents(ctx context.Context, userID string) ([]string, error)

	// StudentSchool returns the school id a student record belongs to.
	// Used to verify that an explicit studentId filter stays inside the
	// caller's school. Returns NotFound for unknown students.
	StudentSchool(ctx context.Context, studentID string) (string, error)

	// ClassSchool returns the school id a class belongs to.
	// Returns NotFound for unknown classes.
	ClassSchool(ctx context.Context, classID string) (string, error)
}
