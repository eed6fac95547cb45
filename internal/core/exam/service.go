// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exam

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

// ListResults returns the exam results visible to the viewer.
func (service *Service) ListResults(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Result, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceExams, authz.ActionList, authz.Target{StudentID: filter.StudentID})
	if err != nil {
		return nil, 0, err
	}

	if scope.Empty {
		return []*Result{}, 0, nil
	}

	return service.repo.ListResults(ctx, ListQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		SubjectID:  filter.SubjectID,
		ExamName:   filter.ExamName,
		Limit:      limit,
		Offset:     offset,
	})
}

// RecordInput holds the data for entering one exam score.
type RecordInput struct {
	StudentID string    `json:"student_id"`
	SubjectID string    `json:"subject_id"`
	ExamName  string    `json:"exam_name"`
	Score     float64   `json:"score"`
	MaxScore  float64   `json:"max_score"`
	Date      time.Time `json:"date"`
}

// Record enters a student's score for an exam.
func (service *Service) Record(ctx context.Context, viewer authz.Identity, input RecordInput) (*Result, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceExams, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldStudentID, input.StudentID)
	validator.Required(FieldSubjectID, input.SubjectID)
	validator.Required(FieldExamName, input.ExamName).MaxLen(FieldExamName, input.ExamName, 200)
	validator.Custom(FieldMaxScore, input.MaxScore <= 0, "Maximum score must be greater than zero")
	validator.Custom(FieldScore, input.Score < 0 || input.Score > input.MaxScore, "Score must be between zero and the maximum score")
	validator.Custom(FieldDate, input.Date.IsZero(), "Date is required")
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

	r := &Result{
		ID:         uuid.New(),
		SchoolID:   studentSchool,
		StudentID:  input.StudentID,
		SubjectID:  input.SubjectID,
		ExamName:   input.ExamName,
		Score:      input.Score,
		MaxScore:   input.MaxScore,
		Date:       input.Date,
		RecordedBy: viewer.UserID,
	}

	if err := service.repo.CreateResult(ctx, r); err != nil {
		return nil, err
	}

	service.logger.Info("exam_result_recorded",
		slog.String("result_id", r.ID),
		slog.String("student_id", r.StudentID),
		slog.String("exam", r.ExamName),
	)
	return r, nil
}

// Rescore replaces a result's score, keeping it within the maximum.
func (service *Service) Rescore(ctx context.Context, viewer authz.Identity, id string, score float64) (*Result, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceExams, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	r, err := service.repo.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Exam result", r.SchoolID, r.StudentID); err != nil {
		return nil, err
	}

	if score < 0 || score > r.MaxScore {
		return nil, validate.RequiredError(FieldScore, "Score must be between zero and the maximum score")
	}

	r.Score = score
	if err := service.repo.UpdateResult(ctx, r); err != nil {
		return nil, err
	}

	service.logger.Info("exam_result_rescored", slog.String("result_id", r.ID))
	return r, nil
}

// Delete removes an exam result.
func (service *Service) Delete(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceExams, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	r, err := service.repo.GetResult(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Exam result", r.SchoolID, r.StudentID); err != nil {
		return err
	}

	if err := service.repo.DeleteResult(ctx, r.ID); err != nil {
		return err
	}

	service.logger.Warn("exam_result_deleted", slog.String("result_id", r.ID))
	return nil
}
