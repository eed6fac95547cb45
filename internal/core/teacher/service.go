// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package teacher

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

// ListTeachers returns the teaching staff of the viewer's school.
func (service *Service) ListTeachers(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Teacher, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionList, authz.Target{})
	if err != nil {
		return nil, 0, err
	}

	return service.repo.ListTeachers(ctx, ListQuery{
		SchoolID: scope.SchoolID,
		Query:    filter.Query,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetTeacher returns one teacher if the record lies within the viewer's scope.
func (service *Service) GetTeacher(ctx context.Context, viewer authz.Identity, id string) (*Teacher, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	t, err := service.repo.GetTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Teacher", t.SchoolID, ""); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateInput holds the data for hiring a new teacher.
type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`

	// SchoolID is only honored for the super admin.
	SchoolID string `json:"school_id"`
}

// CreateTeacher provisions a teacher profile and its login account in one
// transaction.
func (service *Service) CreateTeacher(ctx context.Context, viewer authz.Identity, input CreateInput) (*Teacher, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionCreate, authz.Target{})
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
	t := &Teacher{
		ID:       uuid.New(),
		UserID:   account.ID,
		SchoolID: schoolID,
	}

	if err := service.repo.CreateTeacherWithAccount(ctx, account, t); err != nil {
		return nil, err
	}

	service.logger.Info("teacher_hired",
		slog.String("teacher_id", t.ID),
		slog.String("school_id", t.SchoolID),
	)
	return t, nil
}

// AssignSubject gives the teacher a subject to teach.
//
// A subject has at most one teacher. Assigning one that is already held is a
// Conflict; the caller must unassign first. Reassignment by overwrite would
// hide mistakes where two admins race over the same subject.
func (service *Service) AssignSubject(ctx context.Context, viewer authz.Identity, teacherID, subjectID string) (*Teacher, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	t, err := service.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if err := scope.PermitRecord("Teacher", t.SchoolID, ""); err != nil {
		return nil, err
	}

	assignment, err := service.repo.SubjectAssignment(ctx, subjectID)
	if err != nil {
		return nil, apperr.NotFound("Subject")
	}
	if assignment.SchoolID != t.SchoolID {
		return nil, apperr.NotFound("Subject")
	}
	if assignment.TeacherID != "" {
		if assignment.TeacherID == t.ID {
			return nil, apperr.Conflict("Subject is already assigned to this teacher")
		}
		return nil, apperr.Conflict("Subject is already assigned to another teacher")
	}

	if err := service.repo.AssignSubject(ctx, subjectID, t.ID); err != nil {
		return nil, err
	}

	service.logger.Info("subject_assigned",
		slog.String("teacher_id", t.ID),
		slog.String("subject_id", subjectID),
	)
	return service.repo.GetTeacher(ctx, teacherID)
}

// UnassignSubject releases a subject held by the teacher.
func (service *Service) UnassignSubject(ctx context.Context, viewer authz.Identity, teacherID, subjectID string) (*Teacher, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	t, err := service.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if err := scope.PermitRecord("Teacher", t.SchoolID, ""); err != nil {
		return nil, err
	}

	assignment, err := service.repo.SubjectAssignment(ctx, subjectID)
	if err != nil {
		return nil, apperr.NotFound("Subject")
	}
	if assignment.TeacherID != t.ID {
		return nil, validate.RequiredError(FieldSubjectID, "Subject is not assigned to this teacher")
	}

	if err := service.repo.UnassignSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	service.logger.Info("subject_unassigned",
		slog.String("teacher_id", t.ID),
		slog.String("subject_id", subjectID),
	)
	return service.repo.GetTeacher(ctx, teacherID)
}

// DeleteTeacher removes the teacher and their login account. Held subjects
// become unassigned; they are never deleted with the teacher.
func (service *Service) DeleteTeacher(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTeachers, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	t, err := service.repo.GetTeacher(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Teacher", t.SchoolID, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteTeacher(ctx, t.ID, t.UserID); err != nil {
		return err
	}

	service.logger.Warn("teacher_deleted",
		slog.String("teacher_id", t.ID),
		slog.String("school_id", t.SchoolID),
	)
	return nil
}
