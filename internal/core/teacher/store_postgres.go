// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package teacher

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const teacherColumns = `
	t.id, t.user_id, t.school_id,
	a.full_name, a.email,
	(
		SELECT COALESCE(array_agg(sub.id ORDER BY sub.id), '{}')
		FROM core.subject sub
		WHERE sub.teacher_id = t.id
	),
	t.created_at, t.updated_at`

func scanTeacher(row interface{ Scan(...any) error }) (*Teacher, error) {
	t := &Teacher{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.SchoolID,
		&t.FullName, &t.Email, &t.SubjectIDs,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (repository *PostgresRepository) ListTeachers(ctx context.Context, q ListQuery) ([]*Teacher, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.SchoolID != "" {
		args = append(args, q.SchoolID)
		where += fmt.Sprintf(" AND t.school_id = $%d", len(args))
	}

	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		where += fmt.Sprintf(" AND a.full_name ILIKE $%d", len(args))
	}

	from := ` FROM core.teacher t JOIN users.account a ON a.id = t.user_id`

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_teachers")
	}

	query := `SELECT ` + teacherColumns + from + where +
		fmt.Sprintf(" ORDER BY a.full_name ASC, t.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_teachers")
	}
	defer rows.Close()

	var teachers []*Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_teacher")
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_teachers")
	}

	return teachers, total, nil
}

func (repository *PostgresRepository) GetTeacher(ctx context.Context, id string) (*Teacher, error) {
	query := `SELECT ` + teacherColumns + `
		FROM core.teacher t
		JOIN users.account a ON a.id = t.user_id
		WHERE t.id = $1`

	t, err := scanTeacher(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_teacher")
	}
	return t, nil
}

func (repository *PostgresRepository) CreateTeacherWithAccount(ctx context.Context, account NewAccount, t *Teacher) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_create_teacher")
	}
	defer tx.Rollback(ctx)

	const accountQuery = `
		INSERT INTO users.account (id, email, password_hash, full_name, role, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, accountQuery,
		account.ID, account.Email, account.PasswordHash, account.FullName, sec.RoleTeacher, t.SchoolID,
	); err != nil {
		return dberr.Wrap(err, "create_teacher_account")
	}

	const teacherQuery = `
		INSERT INTO core.teacher (id, user_id, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, teacherQuery, t.ID, t.UserID, t.SchoolID).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create_teacher")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_create_teacher")
	}

	t.FullName = account.FullName
	t.Email = account.Email
	return nil
}

func (repository *PostgresRepository) DeleteTeacher(ctx context.Context, id, userID string) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_teacher")
	}
	defer tx.Rollback(ctx)

	// Subjects survive their teacher; they just become unassigned.
	if _, err := tx.Exec(ctx, `UPDATE core.subject SET teacher_id = NULL WHERE teacher_id = $1`, id); err != nil {
		return dberr.Wrap(err, "unassign_teacher_subjects")
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM core.teacher WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_teacher")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users.account WHERE id = $1`, userID); err != nil {
		return dberr.Wrap(err, "delete_teacher_account")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit_delete_teacher")
}

func (repository *PostgresRepository) SubjectAssignment(ctx context.Context, subjectID string) (SubjectAssignment, error) {
	const query = `
		SELECT c.school_id, COALESCE(sub.teacher_id::text, '')
		FROM core.subject sub
		JOIN core.class c ON c.id = sub.class_id
		WHERE sub.id = $1
	`

	var assignment SubjectAssignment
	err := repository.db.QueryRow(ctx, query, subjectID).Scan(&assignment.SchoolID, &assignment.TeacherID)
	return assignment, dberr.Wrap(err, "subject_assignment")
}

func (repository *PostgresRepository) AssignSubject(ctx context.Context, subjectID, teacherID string) error {
	// The guard repeats the unassigned check so two concurrent assigns
	// cannot both win.
	const query = `
		UPDATE core.subject SET teacher_id = $2, updated_at = NOW()
		WHERE id = $1 AND teacher_id IS NULL
	`

	cmd, err := repository.db.Exec(ctx, query, subjectID, teacherID)
	if err != nil {
		return dberr.Wrap(err, "assign_subject")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrConflict
	}
	return nil
}

func (repository *PostgresRepository) UnassignSubject(ctx context.Context, subjectID string) error {
	cmd, err := repository.db.Exec(ctx, `UPDATE core.subject SET teacher_id = NULL, updated_at = NOW() WHERE id = $1`, subjectID)
	if err != nil {
		return dberr.Wrap(err, "unassign_subject")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
