// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package parent

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

const parentColumns = `
	p.id, p.user_id, p.school_id,
	a.full_name, a.email,
	(
		SELECT COALESCE(array_agg(ps.student_id ORDER BY ps.linked_at), '{}')
		FROM core.parent_student ps
		WHERE ps.parent_id = p.id
	),
	p.created_at, p.updated_at`

func scanParent(row interface{ Scan(...any) error }) (*Parent, error) {
	p := &Parent{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.SchoolID,
		&p.FullName, &p.Email, &p.StudentIDs,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (repository *PostgresRepository) ListParents(ctx context.Context, q ListQuery) ([]*Parent, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.SchoolID != "" {
		args = append(args, q.SchoolID)
		where += fmt.Sprintf(" AND p.school_id = $%d", len(args))
	}

	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		where += fmt.Sprintf(" AND a.full_name ILIKE $%d", len(args))
	}

	from := ` FROM core.parent p JOIN users.account a ON a.id = p.user_id`

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_parents")
	}

	query := `SELECT ` + parentColumns + from + where +
		fmt.Sprintf(" ORDER BY a.full_name ASC, p.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_parents")
	}
	defer rows.Close()

	var parents []*Parent
	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_parent")
		}
		parents = append(parents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_parents")
	}

	return parents, total, nil
}

func (repository *PostgresRepository) GetParent(ctx context.Context, id string) (*Parent, error) {
	query := `SELECT ` + parentColumns + `
		FROM core.parent p
		JOIN users.account a ON a.id = p.user_id
		WHERE p.id = $1`

	p, err := scanParent(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_parent")
	}
	return p, nil
}

func (repository *PostgresRepository) CreateParentWithAccount(ctx context.Context, account NewAccount, p *Parent) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_create_parent")
	}
	defer tx.Rollback(ctx)

	const accountQuery = `
		INSERT INTO users.account (id, email, password_hash, full_name, role, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, accountQuery,
		account.ID, account.Email, account.PasswordHash, account.FullName, sec.RoleParent, p.SchoolID,
	); err != nil {
		return dberr.Wrap(err, "create_parent_account")
	}

	const parentQuery = `
		INSERT INTO core.parent (id, user_id, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, parentQuery, p.ID, p.UserID, p.SchoolID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create_parent")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_create_parent")
	}

	p.FullName = account.FullName
	p.Email = account.Email
	return nil
}

func (repository *PostgresRepository) DeleteParent(ctx context.Context, id, userID string) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_parent")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM core.parent_student WHERE parent_id = $1`, id); err != nil {
		return dberr.Wrap(err, "unlink_parent_students")
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM core.parent WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_parent")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users.account WHERE id = $1`, userID); err != nil {
		return dberr.Wrap(err, "delete_parent_account")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit_delete_parent")
}

func (repository *PostgresRepository) LinkStudent(ctx context.Context, parentID, studentID string) error {
	const query = `INSERT INTO core.parent_student (parent_id, student_id, linked_at) VALUES ($1, $2, NOW())`

	if _, err := repository.db.Exec(ctx, query, parentID, studentID); err != nil {
		return dberr.Wrap(err, "link_student")
	}
	return nil
}

func (repository *PostgresRepository) UnlinkStudent(ctx context.Context, parentID, studentID string) error {
	cmd, err := repository.db.Exec(ctx,
		`DELETE FROM core.parent_student WHERE parent_id = $1 AND student_id = $2`, parentID, studentID)
	if err != nil {
		return dberr.Wrap(err, "unlink_student")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) StudentSchool(ctx context.Context, studentID string) (string, error) {
	var schoolID string
	err := repository.db.QueryRow(ctx, `SELECT school_id FROM core.student WHERE id = $1`, studentID).Scan(&schoolID)
	return schoolID, dberr.Wrap(err, "student_school")
}
