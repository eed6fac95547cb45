// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package parent

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/uuid"
)

type Service struct {
	repo   Repository
	scopes *authz.Engine
	logger *slog.Logger
}

func NewService(repo Repository, scopes *authz.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, logger: logger}
}

// ListParents returns the guardians of the viewer's school.
func (service *Service) ListParents(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Parent, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionList, authz.Target{})
	if err != nil {
		return nil, 0, err
	}

	return service.repo.ListParents(ctx, ListQuery{
		SchoolID: scope.SchoolID,
		Query:    filter.Query,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetParent returns one parent if the record lies within the viewer's scope.
func (service *Service) GetParent(ctx context.Context, viewer authz.Identity, id string) (*Parent, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	p, err := service.repo.GetParent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Parent", p.SchoolID, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateInput holds the data for registering a new guardian.
type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`

	// SchoolID is only honored for the super admin.
	SchoolID string `json:"school_id"`
}

// CreateParent provisions a guardian profile and its login account in one
// transaction. Links to students are managed separately.
func (service *Service) CreateParent(ctx context.Context, viewer authz.Identity, input CreateInput) (*Parent, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	schoolID := scope.SchoolID
	if scope.Everything {
		schoolID = input.SchoolID
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 8)
	validator.Required(FieldFullName, input.FullName).MaxLen(FieldFullName, input.FullName, 150)
	validator.Custom("school_id", schoolID == "", "School is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	account := NewAccount{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
	}
	p := &Parent{
		ID:       uuid.New(),
		UserID:   account.ID,
		SchoolID: schoolID,
	}

	if err := service.repo.CreateParentWithAccount(ctx, account, p); err != nil {
		return nil, err
	}

	service.logger.Info("parent_registered",
		slog.String("parent_id", p.ID),
		slog.String("school_id", p.SchoolID),
	)
	return p, nil
}

// LinkStudent attaches a student to the parent. Both must belong to the same
// school; a student from another school reads as absent.
func (service *Service) LinkStudent(ctx context.Context, viewer authz.Identity, parentID, studentID string) (*Parent, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	p, err := service.repo.GetParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := scope.PermitRecord("Parent", p.SchoolID, ""); err != nil {
		return nil, err
	}

	studentSchool, err := service.repo.StudentSchool(ctx, studentID)
	if err != nil {
		return nil, apperr.NotFound("Student")
	}
	if studentSchool != p.SchoolID {
		return nil, apperr.NotFound("Student")
	}

	if err := service.repo.LinkStudent(ctx, p.ID, studentID); err != nil {
		return nil, err
	}

	service.logger.Info("parent_student_linked",
		slog.String("parent_id", p.ID),
		slog.String("student_id", studentID),
	)
	return service.repo.GetParent(ctx, parentID)
}

// UnlinkStudent detaches a student from the parent. The student record is
// never touched.
func (service *Service) UnlinkStudent(ctx context.Context, viewer authz.Identity, parentID, studentID string) (*Parent, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	p, err := service.repo.GetParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := scope.PermitRecord("Parent", p.SchoolID, ""); err != nil {
		return nil, err
	}

	if err := service.repo.UnlinkStudent(ctx, p.ID, studentID); err != nil {
		return nil, err
	}

	service.logger.Info("parent_student_unlinked",
		slog.String("parent_id", p.ID),
		slog.String("student_id", studentID),
	)
	return service.repo.GetParent(ctx, parentID)
}

// DeleteParent removes the guardian and their login account. Linked students
// survive with the links removed.
func (service *Service) DeleteParent(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceParents, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	p, err := service.repo.GetParent(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Parent", p.SchoolID, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteParent(ctx, p.ID, p.UserID); err != nil {
		return err
	}

	service.logger.Warn("parent_deleted",
		slog.String("parent_id", p.ID),
		slog.String("school_id", p.SchoolID),
	)
	return nil
}
