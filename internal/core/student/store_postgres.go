// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

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

// studentColumns joins the profile with its owning account and aggregates the
// parent links, so a single round trip serves the read paths.
const studentColumns = `
	s.id, s.user_id, s.school_id, s.class_id, s.section_id, s.roll_number,
	a.full_name, a.email,
	(
		SELECT COALESCE(array_agg(ps.parent_id ORDER BY ps.parent_id), '{}')
		FROM core.parent_student ps
		WHERE ps.student_id = s.id
	),
	s.created_at, s.updated_at`

func scanStudent(row interface{ Scan(...any) error }) (*Student, error) {
	s := &Student{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.SchoolID, &s.ClassID, &s.SectionID, &s.RollNumber,
		&s.FullName, &s.Email, &s.ParentIDs,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (repository *PostgresRepository) ListStudents(ctx context.Context, q ListQuery) ([]*Student, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.SchoolID != "" {
		args = append(args, q.SchoolID)
		where += fmt.Sprintf(" AND s.school_id = $%d", len(args))
	}

	if q.IDs != nil {
		args = append(args, q.IDs)
		where += fmt.Sprintf(" AND s.id = ANY($%d)", len(args))
	}

	if q.ClassID != "" {
		args = append(args, q.ClassID)
		where += fmt.Sprintf(" AND s.class_id = $%d", len(args))
	}

	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		where += fmt.Sprintf(" AND a.full_name ILIKE $%d", len(args))
	}

	from := ` FROM core.student s JOIN users.account a ON a.id = s.user_id`

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_students")
	}

	query := `SELECT ` + studentColumns + from + where +
		fmt.Sprintf(" ORDER BY s.roll_number ASC, s.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_students")
	}
	defer rows.Close()

	var students []*Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_student")
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_students")
	}

	return students, total, nil
}

func (repository *PostgresRepository) GetStudent(ctx context.Context, id string) (*Student, error) {
	query := `SELECT ` + studentColumns + `
		FROM core.student s
		JOIN users.account a ON a.id = s.user_id
		WHERE s.id = $1`

	s, err := scanStudent(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_student")
	}
	return s, nil
}

func (repository *PostgresRepository) CreateStudentWithAccount(ctx context.Context, account NewAccount, s *Student, parentID string) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_create_student")
	}
	defer tx.Rollback(ctx)

	const accountQuery = `
		INSERT INTO users.account (id, email, password_hash, full_name, role, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, accountQuery,
		account.ID, account.Email, account.PasswordHash, account.FullName, sec.RoleStudent, s.SchoolID,
	); err != nil {
		return dberr.Wrap(err, "create_student_account")
	}

	const studentQuery = `
		INSERT INTO core.student (id, user_id, school_id, class_id, section_id, roll_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, studentQuery,
		s.ID, s.UserID, s.SchoolID, s.ClassID, s.SectionID, s.RollNumber,
	).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create_student")
	}

	if parentID != "" {
		const linkQuery = `INSERT INTO core.parent_student (parent_id, student_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, linkQuery, parentID, s.ID); err != nil {
			return dberr.Wrap(err, "link_student_parent")
		}
		s.ParentIDs = []string{parentID}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_create_student")
	}

	s.FullName = account.FullName
	s.Email = account.Email
	return nil
}

func (repository *PostgresRepository) UpdateStudent(ctx context.Context, s *Student) error {
	const query = `
		UPDATE core.student
		SET class_id = $2, section_id = $3, roll_number = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, s.ID, s.ClassID, s.SectionID, s.RollNumber).Scan(&s.UpdatedAt)
	return dberr.Wrap(err, "update_student")
}

func (repository *PostgresRepository) DeleteStudent(ctx context.Context, id, userID string) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_student")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM core.parent_student WHERE student_id = $1`, id); err != nil {
		return dberr.Wrap(err, "unlink_student_parents")
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM core.student WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_student")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users.account WHERE id = $1`, userID); err != nil {
		return dberr.Wrap(err, "delete_student_account")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit_delete_student")
}

func (repository *PostgresRepository) ClassSchool(ctx context.Context, classID string) (string, error) {
	var schoolID string
	err := repository.db.QueryRow(ctx, `SELECT school_id FROM core.class WHERE id = $1`, classID).Scan(&schoolID)
	return schoolID, dberr.Wrap(err, "class_school")
}

func (repository *PostgresRepository) SectionChain(ctx context.Context, sectionID string) (SectionInfo, error) {
	const query = `
		SELECT sec.class_id, c.school_id
		FROM core.section sec
		JOIN core.class c ON c.id = sec.class_id
		WHERE sec.id = $1
	`

	var info SectionInfo
	err := repository.db.QueryRow(ctx, query, sectionID).Scan(&info.ClassID, &info.SchoolID)
	return info, dberr.Wrap(err, "section_chain")
}

func (repository *PostgresRepository) ParentSchool(ctx context.Context, parentID string) (string, error) {
	var schoolID string
	err := repository.db.QueryRow(ctx, `SELECT school_id FROM core.parent WHERE id = $1`, parentID).Scan(&schoolID)
	return schoolID, dberr.Wrap(err, "parent_school")
}
