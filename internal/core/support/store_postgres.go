// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package support

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

const ticketColumns = `id, school_id, created_by, COALESCE(student_id::text, ''), subject, body, status, created_at, updated_at`

func (repository *PostgresRepository) ListTickets(ctx context.Context, q ListQuery) ([]*Ticket, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.SchoolID != "" {
		args = append(args, q.SchoolID)
		where += fmt.Sprintf(" AND school_id = $%d", len(args))
	}

	if q.CreatedBy != "" {
		args = append(args, q.CreatedBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*) FROM core.ticket`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_tickets")
	}

	query := `SELECT ` + ticketColumns + ` FROM core.ticket` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_tickets")
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t := &Ticket{}
		if err := rows.Scan(&t.ID, &t.SchoolID, &t.CreatedBy, &t.StudentID, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_ticket")
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_tickets")
	}

	return tickets, total, nil
}

func (repository *PostgresRepository) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM core.ticket WHERE id = $1`

	t := &Ticket{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SchoolID, &t.CreatedBy, &t.StudentID, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_ticket")
	}
	return t, nil
}

func (repository *PostgresRepository) CreateTicket(ctx context.Context, t *Ticket) error {
	const query = `
		INSERT INTO core.ticket (id, school_id, created_by, student_id, subject, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query,
		t.ID, t.SchoolID, t.CreatedBy, t.StudentID, t.Subject, t.Body, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return dberr.Wrap(err, "create_ticket")
}

func (repository *PostgresRepository) UpdateTicket(ctx context.Context, t *Ticket) error {
	const query = `
		UPDATE core.ticket SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, t.ID, t.Status).Scan(&t.UpdatedAt)
	return dberr.Wrap(err, "update_ticket")
}

func (repository *PostgresRepository) DeleteTicket(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.ticket WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_ticket")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
