// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
)

// Clock abstracts "today" so fee status reconciliation is testable.
type Clock func() time.Time

type Service struct {
	repo   Repository
	scopes *authz.Engine
	now    Clock
	logger *slog.Logger
}

func NewService(repo Repository, scopes *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		scopes: scopes,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the service clock. Test hook.
func (service *Service) WithClock(clock Clock) *Service {
	service.now = clock
	return service
}

// AttendanceFilter narrows an attendance report.
type AttendanceFilter struct {
	StudentID string
	ClassID   string
	From      time.Time
	To        time.Time
}

// Attendance builds the attendance summary over the viewer's scope.
func (service *Service) Attendance(ctx context.Context, viewer authz.Identity, filter AttendanceFilter) (*AttendanceReport, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceReports, authz.ActionRead,
		authz.Target{StudentID: filter.StudentID, ClassID: filter.ClassID})
	if err != nil {
		return nil, err
	}

	if scope.Empty {
		report := SummarizeAttendance(nil)
		return &report, nil
	}

	records, err := service.repo.AttendanceRecords(ctx, AttendanceQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		ClassID:    filter.ClassID,
		From:       filter.From,
		To:         filter.To,
	})
	if err != nil {
		return nil, err
	}

	report := SummarizeAttendance(records)
	return &report, nil
}

// FeeFilter narrows a fee report.
type FeeFilter struct {
	StudentID string
}

// Fees builds the fee summary over the viewer's scope, with stored statuses
// reconciled against today.
func (service *Service) Fees(ctx context.Context, viewer authz.Identity, filter FeeFilter) (*FeeReport, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceReports, authz.ActionRead,
		authz.Target{StudentID: filter.StudentID})
	if err != nil {
		return nil, err
	}

	if scope.Empty {
		report := SummarizeFees(nil, service.now())
		return &report, nil
	}

	fees, err := service.repo.Fees(ctx, FeeQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
	})
	if err != nil {
		return nil, err
	}

	report := SummarizeFees(fees, service.now())
	return &report, nil
}

// ExamFilter narrows an exam report.
type ExamFilter struct {
	StudentID string
	SubjectID string
	ExamName  string
}

// Exams builds the exam marks summary over the viewer's scope.
func (service *Service) Exams(ctx context.Context, viewer authz.Identity, filter ExamFilter) (*ExamReport, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceReports, authz.ActionRead,
		authz.Target{StudentID: filter.StudentID})
	if err != nil {
		return nil, err
	}

	if scope.Empty {
		report := SummarizeExams(nil)
		return &report, nil
	}

	results, err := service.repo.ExamResults(ctx, ExamQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		SubjectID:  filter.SubjectID,
		ExamName:   filter.ExamName,
	})
	if err != nil {
		return nil, err
	}

	report := SummarizeExams(results)
	return &report, nil
}

// Student builds the combined summary for one student. The scope check runs
// once with the student as the explicit target, then the three record sets
// are fetched concurrently.
func (service *Service) Student(ctx context.Context, viewer authz.Identity, studentID string) (*StudentReport, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceReports, authz.ActionRead,
		authz.Target{StudentID: studentID})
	if err != nil {
		return nil, err
	}

	students := []string{studentID}

	var (
		records []*attendance.Record
		fees    []*fee.Fee
		results []*exam.Result
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		records, err = service.repo.AttendanceRecords(groupCtx, AttendanceQuery{SchoolID: scope.SchoolID, StudentIDs: students})
		return err
	})
	group.Go(func() error {
		var err error
		fees, err = service.repo.Fees(groupCtx, FeeQuery{SchoolID: scope.SchoolID, StudentIDs: students})
		return err
	})
	group.Go(func() error {
		var err error
		results, err = service.repo.ExamResults(groupCtx, ExamQuery{SchoolID: scope.SchoolID, StudentIDs: students})
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	exams := SummarizeExams(results)
	report := &StudentReport{
		StudentID:   studentID,
		GeneratedAt: service.now(),
		Attendance:  SummarizeAttendance(records).AttendanceBreakdown,
		Fees:        SummarizeFees(fees, service.now()).FeeBreakdown,
		Exams:       exams.ScoreStats,
		ByExam:      exams.ByExam,
	}

	service.logger.Debug("student_report_generated",
		slog.String("student_id", studentID),
		slog.String("viewer_role", string(viewer.Role)),
	)
	return report, nil
}
