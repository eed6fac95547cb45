// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee

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

const feeColumns = `id, school_id, student_id, title, amount, due_date, status, paid_at, created_at, updated_at`

func (repository *PostgresRepository) ListFees(ctx context.Context, q ListQuery) ([]*Fee, int, error) {
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

	// The status filter matches the EFFECTIVE status, so overdue and pending
	// are expressed through the due date rather than the stored value. The
	// cutoff comes from the caller's clock, not the database session, so the
	// filter and the reconciled display status use the same UTC day.
	switch q.Status {
	case StatusPaid:
		where += ` AND status = 'paid'`
	case StatusOverdue:
		args = append(args, dateOnly(q.Today))
		where += fmt.Sprintf(` AND status <> 'paid' AND due_date < $%d`, len(args))
	case StatusPending:
		args = append(args, dateOnly(q.Today))
		where += fmt.Sprintf(` AND status <> 'paid' AND due_date >= $%d`, len(args))
	}

	var total int
	countQuery := `SELECT count(*) FROM core.fee` + where
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_fees")
	}

	query := `SELECT ` + feeColumns + ` FROM core.fee` + where +
		fmt.Sprintf(" ORDER BY due_date ASC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_fees")
	}
	defer rows.Close()

	var fees []*Fee
	for rows.Next() {
		f := &Fee{}
		if err := rows.Scan(&f.ID, &f.SchoolID, &f.StudentID, &f.Title, &f.Amount, &f.DueDate, &f.Status, &f.PaidAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_fee")
		}
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_fees")
	}

	return fees, total, nil
}

func (repository *PostgresRepository) GetFee(ctx context.Context, id string) (*Fee, error) {
	query := `SELECT ` + feeColumns + ` FROM core.fee WHERE id = $1`

	f := &Fee{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.SchoolID, &f.StudentID, &f.Title, &f.Amount, &f.DueDate, &f.Status, &f.PaidAt, &f.CreatedAt, &f.UpdatedAt,
	)

	return f, dberr.Wrap(err, "get_fee")
}

func (repository *PostgresRepository) CreateFee(ctx context.Context, f *Fee) error {
	const query = `
		INSERT INTO core.fee (id, school_id, student_id, title, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query,
		f.ID, f.SchoolID, f.StudentID, f.Title, f.Amount, f.DueDate, f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)

	return dberr.Wrap(err, "create_fee")
}

func (repository *PostgresRepository) UpdateFee(ctx context.Context, f *Fee) error {
	const query = `
		UPDATE core.fee
		SET title = $2, amount = $3, due_date = $4, status = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, f.ID, f.Title, f.Amount, f.DueDate, f.Status, f.PaidAt).Scan(&f.UpdatedAt)
	return dberr.Wrap(err, "update_fee")
}

func (repository *PostgresRepository) DeleteFee(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.fee WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_fee")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
