// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/blob"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/uuid"
)

// StudentDirectory answers which school a student belongs to.
type StudentDirectory interface {
	StudentSchool(ctx context.Context, studentID string) (string, error)
}

type Service struct {
	repo     Repository
	blobs    blob.Store
	scopes   *authz.Engine
	students StudentDirectory
	logger   *slog.Logger
}

func NewService(repo Repository, blobs blob.Store, scopes *authz.Engine, students StudentDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, scopes: scopes, students: students, logger: logger}
}

// ListDocuments returns the document metadata visible to the viewer.
func (service *Service) ListDocuments(ctx context.Context, viewer authz.Identity, studentID string, limit, offset int) ([]*Document, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceDocuments, authz.ActionList, authz.Target{StudentID: studentID})
	if err != nil {
		return nil, 0, err
	}

	if scope.Empty {
		return []*Document{}, 0, nil
	}

	return service.repo.ListDocuments(ctx, ListQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		Limit:      limit,
		Offset:     offset,
	})
}

// UploadInput holds one upload: the target student and the file content.
type UploadInput struct {
	StudentID string
	FileName  string
	Size      int64
	Body      io.Reader
}

// Upload stores a file for a student and records its metadata. Only
// whitelisted file types are accepted, and the content is written to object
// storage before the metadata row, so a failed write leaves no dangling
// reference.
func (service *Service) Upload(ctx context.Context, viewer authz.Identity, input UploadInput) (*Document, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceDocuments, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldStudentID, input.StudentID)
	validator.Required(FieldFile, input.FileName)
	validator.Custom(FieldFile, input.Size <= 0, "File is empty")
	validator.Custom(FieldFile, input.Size > MaxUploadSize, "File exceeds the 10 MiB limit")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	contentType, ok := ContentTypeFor(input.FileName)
	if !ok {
		return nil, validate.RequiredError(FieldFile, "File type is not allowed")
	}

	studentSchool, err := service.students.StudentSchool(ctx, input.StudentID)
	if err != nil {
		return nil, apperr.NotFound("Student")
	}
	if !scope.Everything && studentSchool != scope.SchoolID {
		return nil, apperr.Forbidden("Access denied. The student does not belong to your school")
	}

	d := &Document{
		ID:          uuid.New(),
		SchoolID:    studentSchool,
		StudentID:   input.StudentID,
		FileName:    input.FileName,
		ContentType: contentType,
		Size:        input.Size,
		UploadedBy:  viewer.UserID,
	}
	d.Key = fmt.Sprintf("documents/%s/%s/%s", d.SchoolID, d.StudentID, d.ID)
	d.URL = service.blobs.URL(d.Key)

	if err := service.blobs.Put(ctx, d.Key, d.ContentType, input.Body, d.Size); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := service.repo.CreateDocument(ctx, d); err != nil {
		// Best effort: do not leave an orphaned object behind.
		if cleanupErr := service.blobs.Delete(ctx, d.Key); cleanupErr != nil {
			service.logger.Error("document_cleanup_failed",
				slog.String("key", d.Key),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return nil, err
	}

	service.logger.Info("document_uploaded",
		slog.String("document_id", d.ID),
		slog.String("student_id", d.StudentID),
		slog.Int64("size", d.Size),
	)
	return d, nil
}

// GetDocument returns one document's metadata if it lies within the viewer's
// scope.
func (service *Service) GetDocument(ctx context.Context, viewer authz.Identity, id string) (*Document, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceDocuments, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	d, err := service.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Document", d.SchoolID, d.StudentID); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a document's metadata and its stored content.
func (service *Service) Delete(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceDocuments, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	d, err := service.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Document", d.SchoolID, d.StudentID); err != nil {
		return err
	}

	if err := service.repo.DeleteDocument(ctx, d.ID); err != nil {
		return err
	}

	// Metadata is the source of truth; a failed object delete only leaves
	// unreferenced content behind.
	if err := service.blobs.Delete(ctx, d.Key); err != nil {
		service.logger.Error("document_blob_delete_failed",
			slog.String("key", d.Key),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Warn("document_deleted", slog.String("document_id", d.ID))
	return nil
}
