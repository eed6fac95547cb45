// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attendance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sekola/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const attendanceColumns = `id, school_id, student_id, date, status, marked_by, created_at, updated_at`

func (repository *PostgresRepository) ListRecords(ctx context.Context, q ListQuery) ([]*Record, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.SchoolID != "" {
		args = append(args, q.SchoolID)
		where += fmt.Sprintf(" AND school_id = $%d", len(args))
	}

	if q.StudentIDs != nil {
		args = append(args, q.StudentIDs)
		where += fmt.Sprintf(" AND student_id = ANY($%d)", len(args))
	}

	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if !q.From.IsZero() {
		args = append(args, q.From)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}

	if !q.To.IsZero() {
		args = append(args, q.To)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*) FROM core.attendance`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_attendance")
	}

	query := `SELECT ` + attendanceColumns + ` FROM core.attendance` + where +
		fmt.Sprintf(" ORDER BY date DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_attendance")
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.SchoolID, &r.StudentID, &r.Date, &r.Status, &r.MarkedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_attendance")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_attendance")
	}

	return records, total, nil
}

func (repository *PostgresRepository) GetRecord(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + attendanceColumns + ` FROM core.attendance WHERE id = $1`

	r := &Record{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.SchoolID, &r.StudentID, &r.Date, &r.Status, &r.MarkedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_attendance")
	}
	return r, nil
}

func (repository *PostgresRepository) CreateRecord(ctx context.Context, r *Record) error {
	const query = `
		INSERT INTO core.attendance (id, school_id, student_id, date, status, marked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query,
		r.ID, r.SchoolID, r.StudentID, r.Date, r.Status, r.MarkedBy,
	).Scan(&r.CreatedAt, &r.UpdatedAt)

	return dberr.Wrap(err, "create_attendance")
}

func (repository *PostgresRepository) UpdateRecord(ctx context.Context, r *Record) error {
	const query = `
		UPDATE core.attendance SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, r.ID, r.Status).Scan(&r.UpdatedAt)
	return dberr.Wrap(err, "update_attendance")
}

func (repository *PostgresRepository) DeleteRecord(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.attendance WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_attendance")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
