// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

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

const documentColumns = `id, school_id, student_id, file_name, content_type, size, key, url, uploaded_by, created_at`

func (repository *PostgresRepository) ListDocuments(ctx context.Context, q ListQuery) ([]*Document, int, error) {
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

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*) FROM core.document`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_documents")
	}

	query := `SELECT ` + documentColumns + ` FROM core.document` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_documents")
	}
	defer rows.Close()

	var documents []*Document
	for rows.Next() {
		d := &Document{}
		if err := rows.Scan(&d.ID, &d.SchoolID, &d.StudentID, &d.FileName, &d.ContentType, &d.Size, &d.Key, &d.URL, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_document")
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_documents")
	}

	return documents, total, nil
}

func (repository *PostgresRepository) GetDocument(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM core.document WHERE id = $1`

	d := &Document{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SchoolID, &d.StudentID, &d.FileName, &d.ContentType, &d.Size, &d.Key, &d.URL, &d.UploadedBy, &d.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_document")
	}
	return d, nil
}

func (repository *PostgresRepository) CreateDocument(ctx context.Context, d *Document) error {
	const query = `
		INSERT INTO core.document (id, school_id, student_id, file_name, content_type, size, key, url, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	err := repository.db.QueryRow(ctx, query,
		d.ID, d.SchoolID, d.StudentID, d.FileName, d.ContentType, d.Size, d.Key, d.URL, d.UploadedBy,
	).Scan(&d.CreatedAt)

	return dberr.Wrap(err, "create_document")
}

func (repository *PostgresRepository) DeleteDocument(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.document WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_document")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
