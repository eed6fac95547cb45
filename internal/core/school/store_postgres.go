// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package school

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

// ── Schools ──────────────────────────────────────────────────────────────

func (repository *PostgresRepository) ListSchools(ctx context.Context, q ListQuery) ([]*School, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if q.Query != "" {
		args = append(args, "%"+q.Query+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*) FROM core.school`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_schools")
	}

	query := `SELECT id, name, slug, address, created_at, updated_at FROM core.school` + where +
		fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_schools")
	}
	defer rows.Close()

	var schools []*School
	for rows.Next() {
		s := &School{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_school")
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_schools")
	}

	return schools, total, nil
}

func (repository *PostgresRepository) GetSchool(ctx context.Context, id string) (*School, error) {
	const query = `SELECT id, name, slug, address, created_at, updated_at FROM core.school WHERE id = $1`

	s := &School{}
	err := repository.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Slug, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_school")
	}
	return s, nil
}

func (repository *PostgresRepository) CreateSchool(ctx context.Context, s *School) error {
	const query = `
		INSERT INTO core.school (id, name, slug, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query, s.ID, s.Name, s.Slug, s.Address).Scan(&s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_school")
}

func (repository *PostgresRepository) UpdateSchool(ctx context.Context, s *School) error {
	const query = `
		UPDATE core.school SET name = $2, slug = $3, address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(ctx, query, s.ID, s.Name, s.Slug, s.Address).Scan(&s.UpdatedAt)
	return dberr.Wrap(err, "update_school")
}

func (repository *PostgresRepository) DeleteSchool(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.school WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_school")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ── Classes ──────────────────────────────────────────────────────────────

func (repository *PostgresRepository) ListClasses(ctx context.Context, schoolID string) ([]*Class, error) {
	const query = `
		SELECT id, school_id, name, created_at, updated_at
		FROM core.class WHERE school_id = $1 ORDER BY name ASC
	`

	rows, err := repository.db.Query(ctx, query, schoolID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_classes")
	}
	defer rows.Close()

	var classes []*Class
	for rows.Next() {
		c := &Class{}
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_class")
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_classes")
	}
	return classes, nil
}

func (repository *PostgresRepository) GetClass(ctx context.Context, id string) (*Class, error) {
	const query = `SELECT id, school_id, name, created_at, updated_at FROM core.class WHERE id = $1`

	c := &Class{}
	err := repository.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.SchoolID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_class")
	}
	return c, nil
}

func (repository *PostgresRepository) CreateClass(ctx context.Context, c *Class) error {
	const query = `
		INSERT INTO core.class (id, school_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query, c.ID, c.SchoolID, c.Name).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_class")
}

func (repository *PostgresRepository) DeleteClass(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.class WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_class")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ── Sections ─────────────────────────────────────────────────────────────

func (repository *PostgresRepository) ListSections(ctx context.Context, classID string) ([]*Section, error) {
	const query = `
		SELECT id, class_id, name, created_at, updated_at
		FROM core.section WHERE class_id = $1 ORDER BY name ASC
	`

	rows, err := repository.db.Query(ctx, query, classID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_sections")
	}
	defer rows.Close()

	var sections []*Section
	for rows.Next() {
		s := &Section{}
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_section")
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_sections")
	}
	return sections, nil
}

func (repository *PostgresRepository) CreateSection(ctx context.Context, s *Section) error {
	const query = `
		INSERT INTO core.section (id, class_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query, s.ID, s.ClassID, s.Name).Scan(&s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_section")
}

func (repository *PostgresRepository) DeleteSection(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.section WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_section")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ── Subjects ─────────────────────────────────────────────────────────────

func (repository *PostgresRepository) ListSubjects(ctx context.Context, classID string) ([]*Subject, error) {
	const query = `
		SELECT id, class_id, name, teacher_id, created_at, updated_at
		FROM core.subject WHERE class_id = $1 ORDER BY name ASC
	`

	rows, err := repository.db.Query(ctx, query, classID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_subjects")
	}
	defer rows.Close()

	var subjects []*Subject
	for rows.Next() {
		s := &Subject{}
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_subject")
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_subjects")
	}
	return subjects, nil
}

func (repository *PostgresRepository) CreateSubject(ctx context.Context, s *Subject) error {
	const query = `
		INSERT INTO core.subject (id, class_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query, s.ID, s.ClassID, s.Name).Scan(&s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_subject")
}

func (repository *PostgresRepository) DeleteSubject(ctx context.Context, id string) error {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM core.subject WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_subject")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
