// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package school

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/slug"
	"github.com/taibuivan/sekola/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// requireSuperAdmin gates tenant management. Structure management below a
// school goes through requireStructureAdmin instead.
func requireSuperAdmin(viewer authz.Identity) error {
	if viewer.Role != sec.RoleSuperAdmin {
		return apperr.Forbidden("Only the platform administrator can manage schools")
	}
	return nil
}

// requireStructureAdmin resolves which school the viewer may restructure:
// the super admin names any school, a school admin is pinned to their own.
func requireStructureAdmin(viewer authz.Identity, schoolID string) (string, error) {
	switch viewer.Role {
	case sec.RoleSuperAdmin:
		if schoolID == "" {
			return "", validate.RequiredError("school_id", "School is required")
		}
		return schoolID, nil
	case sec.RoleSchoolAdmin:
		return viewer.SchoolID, nil
	}
	return "", apperr.Forbidden("Only administrators can manage the school structure")
}

// ── Schools ──────────────────────────────────────────────────────────────

func (service *Service) ListSchools(ctx context.Context, viewer authz.Identity, query string, limit, offset int) ([]*School, int, error) {
	if err := requireSuperAdmin(viewer); err != nil {
		return nil, 0, err
	}
	return service.repo.ListSchools(ctx, ListQuery{Query: query, Limit: limit, Offset: offset})
}

// GetSchool is readable by the super admin for any school, and by a school
// admin for their own.
func (service *Service) GetSchool(ctx context.Context, viewer authz.Identity, id string) (*School, error) {
	if viewer.Role != sec.RoleSuperAdmin {
		if viewer.Role != sec.RoleSchoolAdmin || viewer.SchoolID != id {
			return nil, apperr.NotFound("School")
		}
	}
	return service.repo.GetSchool(ctx, id)
}

// SchoolInput holds the data for creating or renaming a school.
type SchoolInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CreateSchool registers a new tenant. The slug is derived from the name and
// must be unique platform-wide.
func (service *Service) CreateSchool(ctx context.Context, viewer authz.Identity, input SchoolInput) (*School, error) {
	if err := requireSuperAdmin(viewer); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.MaxLen(FieldAddress, input.Address, 500)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	s := &School{
		ID:      uuid.New(),
		Name:    input.Name,
		Slug:    slug.From(input.Name),
		Address: input.Address,
	}

	if err := service.repo.CreateSchool(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("school_created",
		slog.String("school_id", s.ID),
		slog.String("slug", s.Slug),
	)
	return s, nil
}

func (service *Service) UpdateSchool(ctx context.Context, viewer authz.Identity, id string, input SchoolInput) (*School, error) {
	if err := requireSuperAdmin(viewer); err != nil {
		return nil, err
	}

	s, err := service.repo.GetSchool(ctx, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.MaxLen(FieldAddress, input.Address, 500)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	s.Name = input.Name
	s.Slug = slug.From(input.Name)
	s.Address = input.Address

	if err := service.repo.UpdateSchool(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("school_updated", slog.String("school_id", s.ID))
	return s, nil
}

// DeleteSchool removes a tenant and everything under it.
func (service *Service) DeleteSchool(ctx context.Context, viewer authz.Identity, id string) error {
	if err := requireSuperAdmin(viewer); err != nil {
		return err
	}

	if err := service.repo.DeleteSchool(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("school_deleted", slog.String("school_id", id))
	return nil
}

// ── Classes ──────────────────────────────────────────────────────────────

func (service *Service) ListClasses(ctx context.Context, viewer authz.Identity, schoolID string) ([]*Class, error) {
	resolved, err := service.resolveSchoolRead(viewer, schoolID)
	if err != nil {
		return nil, err
	}
	return service.repo.ListClasses(ctx, resolved)
}

// ClassInput names a new class within a school.
type ClassInput struct {
	Name     string `json:"name"`
	SchoolID string `json:"school_id"` // super admin only
}

func (service *Service) CreateClass(ctx context.Context, viewer authz.Identity, input ClassInput) (*Class, error) {
	schoolID, err := requireStructureAdmin(viewer, input.SchoolID)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	c := &Class{ID: uuid.New(), SchoolID: schoolID, Name: input.Name}
	if err := service.repo.CreateClass(ctx, c); err != nil {
		return nil, err
	}

	service.logger.Info("class_created",
		slog.String("class_id", c.ID),
		slog.String("school_id", c.SchoolID),
	)
	return c, nil
}

func (service *Service) DeleteClass(ctx context.Context, viewer authz.Identity, id string) error {
	c, err := service.repo.GetClass(ctx, id)
	if err != nil {
		return err
	}

	if _, err := service.verifyClassAccess(viewer, c); err != nil {
		return err
	}

	if err := service.repo.DeleteClass(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("class_deleted", slog.String("class_id", id))
	return nil
}

// ── Sections ─────────────────────────────────────────────────────────────

func (service *Service) ListSections(ctx context.Context, viewer authz.Identity, classID string) ([]*Section, error) {
	if _, err := service.loadReadableClass(ctx, viewer, classID); err != nil {
		return nil, err
	}
	return service.repo.ListSections(ctx, classID)
}

// SectionInput names a new section within a class.
type SectionInput struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
}

func (service *Service) CreateSection(ctx context.Context, viewer authz.Identity, input SectionInput) (*Section, error) {
	validator := &validate.Validator{}
	validator.Required(FieldClassID, input.ClassID)
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.loadVerifiedClass(ctx, viewer, input.ClassID); err != nil {
		return nil, err
	}

	s := &Section{ID: uuid.New(), ClassID: input.ClassID, Name: input.Name}
	if err := service.repo.CreateSection(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("section_created",
		slog.String("section_id", s.ID),
		slog.String("class_id", s.ClassID),
	)
	return s, nil
}

func (service *Service) DeleteSection(ctx context.Context, viewer authz.Identity, classID, id string) error {
	if _, err := service.loadVerifiedClass(ctx, viewer, classID); err != nil {
		return err
	}

	if err := service.repo.DeleteSection(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("section_deleted", slog.String("section_id", id))
	return nil
}

// ── Subjects ─────────────────────────────────────────────────────────────

func (service *Service) ListSubjects(ctx context.Context, viewer authz.Identity, classID string) ([]*Subject, error) {
	if _, err := service.loadReadableClass(ctx, viewer, classID); err != nil {
		return nil, err
	}
	return service.repo.ListSubjects(ctx, classID)
}

// SubjectInput names a new subject within a class. Teacher assignment is a
// separate operation on the teacher resource.
type SubjectInput struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
}

func (service *Service) CreateSubject(ctx context.Context, viewer authz.Identity, input SubjectInput) (*Subject, error) {
	validator := &validate.Validator{}
	validator.Required(FieldClassID, input.ClassID)
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.loadVerifiedClass(ctx, viewer, input.ClassID); err != nil {
		return nil, err
	}

	s := &Subject{ID: uuid.New(), ClassID: input.ClassID, Name: input.Name}
	if err := service.repo.CreateSubject(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("subject_created",
		slog.String("subject_id", s.ID),
		slog.String("class_id", s.ClassID),
	)
	return s, nil
}

func (service *Service) DeleteSubject(ctx context.Context, viewer authz.Identity, classID, id string) error {
	if _, err := service.loadVerifiedClass(ctx, viewer, classID); err != nil {
		return err
	}

	if err := service.repo.DeleteSubject(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("subject_deleted", slog.String("subject_id", id))
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────

// resolveSchoolRead decides which school's structure the viewer may read.
// Any role bound to a school may browse its own structure.
func (service *Service) resolveSchoolRead(viewer authz.Identity, schoolID string) (string, error) {
	if viewer.Role == sec.RoleSuperAdmin {
		if schoolID == "" {
			return "", validate.RequiredError("school_id", "School is required")
		}
		return schoolID, nil
	}

	if viewer.SchoolID == "" {
		return "", apperr.Forbidden("Your account is not associated with a school")
	}
	return viewer.SchoolID, nil
}

// verifyClassRead applies the tenant tie-break to a loaded class: another
// school's class is indistinguishable from an absent one.
func verifyClassRead(viewer authz.Identity, c *Class) (*Class, error) {
	if viewer.Role != sec.RoleSuperAdmin && viewer.SchoolID != c.SchoolID {
		return nil, apperr.NotFound("Class")
	}
	return c, nil
}

// verifyClassAccess additionally requires an admin role for mutations.
func (service *Service) verifyClassAccess(viewer authz.Identity, c *Class) (*Class, error) {
	if _, err := verifyClassRead(viewer, c); err != nil {
		return nil, err
	}
	if !viewer.Role.OneOf(sec.RoleSuperAdmin, sec.RoleSchoolAdmin) {
		return nil, apperr.Forbidden("Only administrators can manage the school structure")
	}
	return c, nil
}

func (service *Service) loadVerifiedClass(ctx context.Context, viewer authz.Identity, classID string) (*Class, error) {
	c, err := service.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return service.verifyClassAccess(viewer, c)
}

func (service *Service) loadReadableClass(ctx context.Context, viewer authz.Identity, classID string) (*Class, error) {
	c, err := service.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return verifyClassRead(viewer, c)
}
