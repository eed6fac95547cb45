// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
	"github.com/taibuivan/sekola/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) AttendanceRecords(ctx context.Context, q AttendanceQuery) ([]*attendance.Record, error) {
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

	if q.ClassID != "" {
		args = append(args, q.ClassID)
		where += fmt.Sprintf(" AND student_id IN (SELECT id FROM core.student WHERE class_id = $%d)", len(args))
	}

	if !q.From.IsZero() {
		args = append(args, q.From)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}

	if !q.To.IsZero() {
		args = append(args, q.To)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query := `SELECT id, school_id, student_id, date, status, marked_by, created_at, updated_at
		FROM core.attendance` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "report_attendance")
	}
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		r := &attendance.Record{}
		if err := rows.Scan(&r.ID, &r.SchoolID, &r.StudentID, &r.Date, &r.Status, &r.MarkedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_report_attendance")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "report_attendance")
	}

	return records, nil
}

func (repository *PostgresRepository) Fees(ctx context.Context, q FeeQuery) ([]*fee.Fee, error) {
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

	query := `SELECT id, school_id, student_id, title, amount, due_date, status, paid_at, created_at, updated_at
		FROM core.fee` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "report_fees")
	}
	defer rows.Close()

	var fees []*fee.Fee
	for rows.Next() {
		f := &fee.Fee{}
		if err := rows.Scan(&f.ID, &f.SchoolID, &f.StudentID, &f.Title, &f.Amount, &f.DueDate, &f.Status, &f.PaidAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_report_fee")
		}
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "report_fees")
	}

	return fees, nil
}

func (repository *PostgresRepository) ExamResults(ctx context.Context, q ExamQuery) ([]*exam.Result, error) {
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

	query := `SELECT id, school_id, student_id, subject_id, exam_name, score, max_score, date, recorded_by, created_at, updated_at
		FROM core.exam_result` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "report_exam_results")
	}
	defer rows.Close()

	var results []*exam.Result
	for rows.Next() {
		r := &exam.Result{}
		if err := rows.Scan(&r.ID, &r.SchoolID, &r.StudentID, &r.SubjectID, &r.ExamName, &r.Score, &r.MaxScore, &r.Date, &r.RecordedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_report_exam_result")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "report_exam_results")
	}

	return results, nil
}
