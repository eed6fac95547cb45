// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sekola/internal/platform/dberr"
)

// PostgresResolver implements [Resolver] with direct lookups against the
// relationship tables. All methods are single-row or single-column reads.
type PostgresResolver struct {
	db *pgxpool.Pool
}

// NewPostgresResolver constructs a [PostgresResolver].
func NewPostgresResolver(db *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (resolver *PostgresResolver) StudentSelf(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM core.student WHERE user_id = $1`

	var studentID string
	err := resolver.db.QueryRow(ctx, query, userID).Scan(&studentID)
	return studentID, dberr.Wrap(err, "resolve_student_self")
}

func (resolver *PostgresResolver) TeacherSelf(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM core.teacher WHERE user_id = $1`

	var teacherID string
	err := resolver.db.QueryRow(ctx, query, userID).Scan(&teacherID)
	return teacherID, dberr.Wrap(err, "resolve_teacher_self")
}

func (resolver *PostgresResolver) LinkedStudents(ctx context.Context, userID string) ([]string, error) {

	// The parent profile must exist; its absence is NotFound, while a
	// profile with zero links is a valid empty scope.
	const parentQuery = `SELECT id FROM core.parent WHERE user_id = $1`

	var parentID string
	if err := resolver.db.QueryRow(ctx, parentQuery, userID).Scan(&parentID); err != nil {
		return nil, dberr.Wrap(err, "resolve_parent_self")
	}

	const linkQuery = `SELECT student_id FROM core.parent_student WHERE parent_id = $1 ORDER BY student_id`

	rows, err := resolver.db.Query(ctx, linkQuery, parentID)
	if err != nil {
		return nil, dberr.Wrap(err, "resolve_linked_students")
	}
	defer rows.Close()

	studentIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_linked_student")
		}
		studentIDs = append(studentIDs, id)
	}

	// A mid-iteration connection error would otherwise silently narrow the
	// parent's scope to whatever rows arrived before the failure.
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "resolve_linked_students")
	}

	return studentIDs, nil
}

func (resolver *PostgresResolver) StudentSchool(ctx context.Context, studentID string) (string, error) {
	const query = `SELECT school_id FROM core.student WHERE id = $1`

	var schoolID string
	err := resolver.db.QueryRow(ctx, query, studentID).Scan(&schoolID)
	return schoolID, dberr.Wrap(err, "resolve_student_school")
}

func (resolver *PostgresResolver) ClassSchool(ctx context.Context, classID string) (string, error) {
	const query = `SELECT school_id FROM core.class WHERE id = $1`

	var schoolID string
	err := resolver.db.QueryRow(ctx, query, classID).Scan(&schoolID)
	return schoolID, dberr.Wrap(err, "resolve_class_school")
}
