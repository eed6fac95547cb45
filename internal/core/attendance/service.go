// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/uuid"
)

// StudentDirectory answers which school a student belongs to.
type StudentDirectory interface {
	StudentSchool(ctx context.Context, studentID string) (string, error)
}

type Service struct {
	repo     Repository
	scopes   *authz.Engine
	students StudentDirectory
	logger   *slog.Logger
}

func NewService(repo Repository, scopes *authz.Engine, students StudentDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, students: students, logger: logger}
}

// ListRecords returns the attendance entries visible to the viewer.
func (service *Service) ListRecords(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Record, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceAttendance, authz.ActionList, authz.Target{StudentID: filter.StudentID})
	if err != nil {
		return nil, 0, err
	}

	if scope.Empty {
		return []*Record{}, 0, nil
	}

	return service.repo.ListRecords(ctx, ListQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		Status:     filter.Status,
		From:       filter.From,
		To:         filter.To,
		Limit:      limit,
		Offset:     offset,
	})
}

// MarkInput holds the data for recording one day's attendance.
type MarkInput struct {
	StudentID string    `json:"student_id"`
	Date      time.Time `json:"date"`
	Status    Status    `json:"status"`
}

// Mark records a student's attendance for one day. The (student, date) pair
// is unique; marking the same day twice is a Conflict.
func (service *Service) Mark(ctx context.Context, viewer authz.Identity, input MarkInput) (*Record, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceAttendance, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldStudentID, input.StudentID)
	validator.Custom(FieldDate, input.Date.IsZero(), "Date is required")
	validator.Custom(FieldStatus, !input.Status.IsValid(), "Unknown attendance status")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	studentSchool, err := service.students.StudentSchool(ctx, input.StudentID)
	if err != nil {
		return nil, apperr.NotFound("Student")
	}
	if !scope.Everything && studentSchool != scope.SchoolID {
		return nil, apperr.Forbidden("Access denied. The student does not belong to your school")
	}

	r := &Record{
		ID:        uuid.New(),
		SchoolID:  studentSchool,
		StudentID: input.StudentID,
		Date:      input.Date.UTC().Truncate(24 * time.Hour),
		Status:    input.Status,
		MarkedBy:  viewer.UserID,
	}

	if err := service.repo.CreateRecord(ctx, r); err != nil {
		return nil, err
	}

	service.logger.Info("attendance_marked",
		slog.String("record_id", r.ID),
		slog.String("student_id", r.StudentID),
		slog.String("status", string(r.Status)),
	)
	return r, nil
}

// Correct replaces the status of an existing entry.
func (service *Service) Correct(ctx context.Context, viewer authz.Identity, id string, status Status) (*Record, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceAttendance, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	if !status.IsValid() {
		return nil, validate.RequiredError(FieldStatus, "Unknown attendance status")
	}

	r, err := service.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Attendance record", r.SchoolID, r.StudentID); err != nil {
		return nil, err
	}

	r.Status = status
	if err := service.repo.UpdateRecord(ctx, r); err != nil {
		return nil, err
	}

	service.logger.Info("attendance_corrected",
		slog.String("record_id", r.ID),
		slog.String("status", string(r.Status)),
	)
	return r, nil
}

// Delete removes an attendance entry.
func (service *Service) Delete(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceAttendance, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	r, err := service.repo.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Attendance record", r.SchoolID, r.StudentID); err != nil {
		return err
	}

	if err := service.repo.DeleteRecord(ctx, r.ID); err != nil {
		return err
	}

	service.logger.Warn("attendance_deleted", slog.String("record_id", r.ID))
	return nil
}
