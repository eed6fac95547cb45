// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exam

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

const resultColumns = `id, school_id, student_id, subject_id, exam_name, score, max_score, date, recorded_by, created_at, updated_at`

func (repository *PostgresRepository) ListResults(ctx context.Context, q ListQuery) ([]*Result, int, error) {
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

	if q.SubjectID != "" {
		args = append(args, q.SubjectID)
		where += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}

	if q.ExamName != "" {
		args = append(args, q.ExamName)
		where += fmt.Sprintf(" AND exam_name = $%d", len(args))
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*) FROM core.exam_result`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_exam_results")
	}

	query := `SELECT ` + resultColumns + ` FROM core.exam_result` + where +
		fmt.Sprintf(" ORDER BY date DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_exam_results")
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r := &Result{}
		if err := rows.Scan(&r.ID, &r.SchoolID, &r.StudentID, &r.SubjectID, &r.ExamName, &r.Score, &r.MaxScore, &r.Date, &r.RecordedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_exam_result")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_exam_results")
	}

	return results, total, nil
}

func (repository *PostgresRepository) GetResult(ctx context.Context, id string) (*Result, error) {
	query := `SELECT ` + resultColumns + ` FROM core.exam_result WHERE id = $1`

	r := &Result{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.SchoolID, &r.StudentID, &r.SubjectID, &r.ExamName, &r.Score, &r.MaxScore, &r.Date, &r.RecordedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_exam_result")
	}
	return r, nil
}

func (repository *PostgresRepository) CreateResult(ctx context.Context, r *Result) error {
	const query = `
		INSERT INTO core.exam_result (id, school_id, student_id, subject_id, exam_name, score, max_score, date, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query,
		r.ID, r.SchoolID, r.StudentID, r.SubjectID, r.ExamName, r.Score, r.MaxScore, r.Date, r.RecordedBy,
	).Scan(&r.CreatedAt, &r.UpdatedAt)

	return dberr.Wrap(err, "create_exam_result")
}

func (repository *PostgresRepository) UpdateResult(ctx context.Context, r *Result) error {
	const query = `
		UPDATE core.exam_result SET score = $2, max_score = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, r.ID, r.Score, r.MaxScore).Scan(&r.UpdatedAt)
	return dberr.Wrap(err, "update_exam_result")
}

func (repository *PostgresRepository) DeleteResult(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.exam_result WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_exam_result")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
