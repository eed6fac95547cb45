// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

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

// ListStudents returns the students visible to the viewer: the whole school
// for staff, themselves for a student, the linked children for a parent.
func (service *Service) ListStudents(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Student, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceStudents, authz.ActionList, authz.Target{ClassID: filter.ClassID})
	if err != nil {
		return nil, 0, err
	}

	if scope.Empty {
		return []*Student{}, 0, nil
	}

	return service.repo.ListStudents(ctx, ListQuery{
		SchoolID: scope.SchoolID,
		IDs:      scope.StudentIDs,
		ClassID:  filter.ClassID,
		Query:    filter.Query,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetStudent returns one student if the record lies within the viewer's scope.
func (service *Service) GetStudent(ctx context.Context, viewer authz.Identity, id string) (*Student, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceStudents, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	s, err := service.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Student", s.SchoolID, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateInput holds the data for enrolling a new student. The login account
// is provisioned by the admin; there is no self-registration.
type CreateInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	ClassID    string `json:"class_id"`
	SectionID  string `json:"section_id"`
	RollNumber int    `json:"roll_number"`

	// SchoolID is only honored for the super admin; school admins always
	// enroll into their own school.
	SchoolID string `json:"school_id"`

	// ParentID optionally links an existing parent at enrollment time.
	ParentID string `json:"parent_id"`
}

// CreateStudent enrolls a student: it verifies the class/section chain, then
// creates the login account and the profile in one transaction.
//
// A duplicate roll number within the class surfaces as a Conflict from the
// unique constraint, and the transaction guarantees the account insert rolls
// back with it.
func (service *Service) CreateStudent(ctx context.Context, viewer authz.Identity, input CreateInput) (*Student, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceStudents, authz.ActionCreate, authz.Target{})
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
	validator.Required(FieldClassID, input.ClassID)
	validator.Required(FieldSectionID, input.SectionID)
	validator.Custom(FieldRollNumber, input.RollNumber <= 0, "Roll number must be greater than zero")
	validator.Custom("school_id", schoolID == "", "School is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// The class and section lookups are independent; run them concurrently.
	var (
		classSchool string
		section     SectionInfo
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var lookupErr error
		classSchool, lookupErr = service.repo.ClassSchool(groupCtx, input.ClassID)
		if lookupErr != nil {
			return apperr.NotFound("Class")
		}
		return nil
	})
	group.Go(func() error {
		var lookupErr error
		section, lookupErr = service.repo.SectionChain(groupCtx, input.SectionID)
		if lookupErr != nil {
			return apperr.NotFound("Section")
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if classSchool != schoolID {
		return nil, apperr.Forbidden("Access denied. The class does not belong to your school")
	}
	if section.ClassID != input.ClassID {
		return nil, validate.RequiredError(FieldSectionID, "Section belongs to a different class")
	}

	if input.ParentID != "" {
		parentSchool, err := service.repo.ParentSchool(ctx, input.ParentID)
		if err != nil {
			return nil, apperr.NotFound("Parent")
		}
		if parentSchool != schoolID {
			return nil, apperr.Forbidden("Access denied. The parent does not belong to your school")
		}
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
	s := &Student{
		ID:         uuid.New(),
		UserID:     account.ID,
		SchoolID:   schoolID,
		ClassID:    input.ClassID,
		SectionID:  input.SectionID,
		RollNumber: input.RollNumber,
	}

	if err := service.repo.CreateStudentWithAccount(ctx, account, s, input.ParentID); err != nil {
		return nil, err
	}

	service.logger.Info("student_enrolled",
		slog.String("student_id", s.ID),
		slog.String("school_id", s.SchoolID),
		slog.String("class_id", s.ClassID),
	)
	return s, nil
}

// UpdateInput holds the optional fields of a student update. Nil fields are
// left unchanged. Moving a student re-runs the full enrollment-chain check.
type UpdateInput struct {
	ClassID    *string `json:"class_id"`
	SectionID  *string `json:"section_id"`
	RollNumber *int    `json:"roll_number"`
}

func (service *Service) UpdateStudent(ctx context.Context, viewer authz.Identity, id string, input UpdateInput) (*Student, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceStudents, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	s, err := service.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Student", s.SchoolID, s.ID); err != nil {
		return nil, err
	}

	if input.ClassID != nil {
		s.ClassID = *input.ClassID
	}
	if input.SectionID != nil {
		s.SectionID = *input.SectionID
	}
	if input.RollNumber != nil {
		if *input.RollNumber <= 0 {
			return nil, validate.RequiredError(FieldRollNumber, "Roll number must be greater than zero")
		}
		s.RollNumber = *input.RollNumber
	}

	if input.ClassID != nil || input.SectionID != nil {
		classSchool, err := service.repo.ClassSchool(ctx, s.ClassID)
		if err != nil {
			return nil, apperr.NotFound("Class")
		}
		if classSchool != s.SchoolID {
			return nil, apperr.Forbidden("Access denied. The class does not belong to your school")
		}

		section, err := service.repo.SectionChain(ctx, s.SectionID)
		if err != nil {
			return nil, apperr.NotFound("Section")
		}
		if section.ClassID != s.ClassID {
			return nil, validate.RequiredError(FieldSectionID, "Section belongs to a different class")
		}
	}

	if err := service.repo.UpdateStudent(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("student_updated", slog.String("student_id", s.ID))
	return s, nil
}

// DeleteStudent removes the student profile together with its login account.
// Dependent records (fees, attendance, exam results) cascade at the storage
// layer; parent profiles survive with the link removed.
func (service *Service) DeleteStudent(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceStudents, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	s, err := service.repo.GetStudent(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Student", s.SchoolID, s.ID); err != nil {
		return err
	}

	if err := service.repo.DeleteStudent(ctx, s.ID, s.UserID); err != nil {
		return err
	}

	service.logger.Warn("student_deleted",
		slog.String("student_id", s.ID),
		slog.String("school_id", s.SchoolID),
	)
	return nil
}
