// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/document"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	documents map[string]*document.Document
	failNext  bool
}

func (r *fakeRepo) ListDocuments(_ context.Context, q document.ListQuery) ([]*document.Document, int, error) {
	var matched []*document.Document
	for _, d := range r.documents {
		if q.SchoolID != "" && d.SchoolID != q.SchoolID {
			continue
		}
		if q.StudentIDs != nil && !contains(q.StudentIDs, d.StudentID) {
			continue
		}
		copied := *d
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetDocument(_ context.Context, id string) (*document.Document, error) {
	d, ok := r.documents[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeRepo) CreateDocument(_ context.Context, d *document.Document) error {
	if r.failNext {
		r.failNext = false
		return apperr.Internal(errors.New("insert failed"))
	}
	copied := *d
	r.documents[d.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteDocument(_ context.Context, id string) error {
	if _, ok := r.documents[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.documents, id)
	return nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// fakeBlobStore records object writes and deletes in memory.
type fakeBlobStore struct {
	objects map[string][]byte
}

func (s *fakeBlobStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = content
	return nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeBlobStore) URL(key string) string {
	return "https://assets.example.com/" + key
}

type fakeDirectory struct {
	schoolByStudent map[string]string
	linksByUser     map[string][]string
}

func (d *fakeDirectory) StudentSchool(_ context.Context, studentID string) (string, error) {
	if school, ok := d.schoolByStudent[studentID]; ok {
		return school, nil
	}
	return "", dberr.ErrNotFound
}

func (d *fakeDirectory) StudentSelf(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func (d *fakeDirectory) TeacherSelf(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func (d *fakeDirectory) LinkedStudents(_ context.Context, userID string) ([]string, error) {
	links, ok := d.linksByUser[userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return links, nil
}

func (d *fakeDirectory) ClassSchool(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func newDocumentFixture(t *testing.T) (*document.Service, *fakeRepo, *fakeBlobStore) {
	t.Helper()

	directory := &fakeDirectory{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-9": "school-b",
		},
		linksByUser: map[string][]string{"user-p1": {"student-1"}},
	}

	repo := &fakeRepo{documents: map[string]*document.Document{}}
	blobs := &fakeBlobStore{objects: map[string][]byte{}}

	service := document.NewService(repo, blobs, authz.NewEngine(directory), directory, slog.Default())
	return service, repo, blobs
}

func classTeacher() authz.Identity {
	return authz.Identity{UserID: "user-t1", Role: sec.RoleTeacher, SchoolID: "school-a"}
}

func pdfUpload(studentID string) document.UploadInput {
	content := "%PDF-1.4 report card"
	return document.UploadInput{
		StudentID: studentID,
		FileName:  "report-card.pdf",
		Size:      int64(len(content)),
		Body:      strings.NewReader(content),
	}
}

/*
TestUpload covers the whitelist, tenancy, and content/metadata consistency.
*/
func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("pdf_is_stored_with_metadata", func(t *testing.T) {
		service, repo, blobs := newDocumentFixture(t)

		d, err := service.Upload(ctx, classTeacher(), pdfUpload("student-1"))
		require.NoError(t, err)

		assert.Equal(t, "application/pdf", d.ContentType)
		assert.Contains(t, d.URL, "https://assets.example.com/documents/school-a/student-1/")
		assert.Contains(t, repo.documents, d.ID)
		assert.Contains(t, blobs.objects, d.Key)
	})

	t.Run("disallowed_extension_is_rejected", func(t *testing.T) {
		service, _, blobs := newDocumentFixture(t)

		input := pdfUpload("student-1")
		input.FileName = "virus.exe"
		_, err := service.Upload(ctx, classTeacher(), input)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		assert.Empty(t, blobs.objects)
	})

	t.Run("cross_school_student_is_forbidden", func(t *testing.T) {
		service, _, _ := newDocumentFixture(t)

		_, err := service.Upload(ctx, classTeacher(), pdfUpload("student-9"))
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("failed_metadata_insert_removes_the_object", func(t *testing.T) {
		service, repo, blobs := newDocumentFixture(t)
		repo.failNext = true

		_, err := service.Upload(ctx, classTeacher(), pdfUpload("student-1"))
		require.Error(t, err)
		assert.Empty(t, blobs.objects)
	})
}

/*
TestDelete verifies that removal clears both metadata and content.
*/
func TestDelete(t *testing.T) {
	service, repo, blobs := newDocumentFixture(t)
	ctx := context.Background()

	d, err := service.Upload(ctx, classTeacher(), pdfUpload("student-1"))
	require.NoError(t, err)

	admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
	require.NoError(t, service.Delete(ctx, admin, d.ID))

	assert.NotContains(t, repo.documents, d.ID)
	assert.NotContains(t, blobs.objects, d.Key)
}

/*
TestListDocuments_ParentScope verifies the parent closure on document lists.
*/
func TestListDocuments_ParentScope(t *testing.T) {
	service, _, _ := newDocumentFixture(t)
	ctx := context.Background()

	_, err := service.Upload(ctx, classTeacher(), pdfUpload("student-1"))
	require.NoError(t, err)

	guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
	documents, _, err := service.ListDocuments(ctx, guardian, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "student-1", documents[0].StudentID)
}
