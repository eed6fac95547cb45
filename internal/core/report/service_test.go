// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
	"github.com/taibuivan/sekola/internal/core/report"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	records []*attendance.Record
	fees    []*fee.Fee
	results []*exam.Result
}

func matchesStudent(studentID string, ids []string) bool {
	if ids == nil {
		return true
	}
	for _, id := range ids {
		if id == studentID {
			return true
		}
	}
	return false
}

func (r *fakeRepo) AttendanceRecords(_ context.Context, q report.AttendanceQuery) ([]*attendance.Record, error) {
	var matched []*attendance.Record
	for _, record := range r.records {
		if q.SchoolID != "" && record.SchoolID != q.SchoolID {
			continue
		}
		if !matchesStudent(record.StudentID, q.StudentIDs) {
			continue
		}
		matched = append(matched, record)
	}
	return matched, nil
}

func (r *fakeRepo) Fees(_ context.Context, q report.FeeQuery) ([]*fee.Fee, error) {
	var matched []*fee.Fee
	for _, f := range r.fees {
		if q.SchoolID != "" && f.SchoolID != q.SchoolID {
			continue
		}
		if !matchesStudent(f.StudentID, q.StudentIDs) {
			continue
		}
		matched = append(matched, f)
	}
	return matched, nil
}

func (r *fakeRepo) ExamResults(_ context.Context, q report.ExamQuery) ([]*exam.Result, error) {
	var matched []*exam.Result
	for _, result := range r.results {
		if q.SchoolID != "" && result.SchoolID != q.SchoolID {
			continue
		}
		if !matchesStudent(result.StudentID, q.StudentIDs) {
			continue
		}
		matched = append(matched, result)
	}
	return matched, nil
}

type fakeResolver struct {
	schoolByStudent map[string]string
	studentByUser   map[string]string
	linksByUser     map[string][]string
}

func (d *fakeResolver) StudentSelf(_ context.Context, userID string) (string, error) {
	if id, ok := d.studentByUser[userID]; ok {
		return id, nil
	}
	return "", dberr.ErrNotFound
}

func (d *fakeResolver) TeacherSelf(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func (d *fakeResolver) LinkedStudents(_ context.Context, userID string) ([]string, error) {
	links, ok := d.linksByUser[userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return links, nil
}

func (d *fakeResolver) StudentSchool(_ context.Context, studentID string) (string, error) {
	if school, ok := d.schoolByStudent[studentID]; ok {
		return school, nil
	}
	return "", dberr.ErrNotFound
}

func (d *fakeResolver) ClassSchool(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func newReportFixture(t *testing.T) *report.Service {
	t.Helper()

	resolver := &fakeResolver{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-2": "school-a",
			"student-9": "school-b",
		},
		studentByUser: map[string]string{"user-s1": "student-1"},
		linksByUser: map[string][]string{
			"user-p1": {"student-1"},
			"user-p2": {},
		},
	}

	repo := &fakeRepo{
		records: []*attendance.Record{
			{ID: "att-1", SchoolID: "school-a", StudentID: "student-1", Status: attendance.StatusPresent},
			{ID: "att-2", SchoolID: "school-a", StudentID: "student-1", Status: attendance.StatusAbsent},
			{ID: "att-3", SchoolID: "school-a", StudentID: "student-2", Status: attendance.StatusPresent},
			{ID: "att-4", SchoolID: "school-b", StudentID: "student-9", Status: attendance.StatusPresent},
		},
		fees: []*fee.Fee{
			{ID: "fee-1", SchoolID: "school-a", StudentID: "student-1", Amount: 100, DueDate: day(t, "2026-03-01"), Status: fee.StatusPending},
			{ID: "fee-2", SchoolID: "school-a", StudentID: "student-2", Amount: 50, DueDate: day(t, "2026-04-01"), Status: fee.StatusPending},
			{ID: "fee-3", SchoolID: "school-b", StudentID: "student-9", Amount: 900, DueDate: day(t, "2026-03-01"), Status: fee.StatusPending},
		},
		results: []*exam.Result{
			{ID: "res-1", SchoolID: "school-a", StudentID: "student-1", ExamName: "Midterm", Score: 80, MaxScore: 100},
			{ID: "res-2", SchoolID: "school-a", StudentID: "student-2", ExamName: "Midterm", Score: 60, MaxScore: 100},
		},
	}

	service := report.NewService(repo, authz.NewEngine(resolver), slog.Default())
	return service.WithClock(func() time.Time { return day(t, "2026-03-15") })
}

/*
TestAttendanceReport_Scopes verifies that each role's aggregates cover exactly
the records inside its visibility.
*/
func TestAttendanceReport_Scopes(t *testing.T) {
	service := newReportFixture(t)
	ctx := context.Background()

	t.Run("school_admin_sees_the_whole_school", func(t *testing.T) {
		admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
		summary, err := service.Attendance(ctx, admin, report.AttendanceFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalRecords)
		assert.Len(t, summary.ByStudent, 2)
	})

	t.Run("student_sees_only_their_own_records", func(t *testing.T) {
		student := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		summary, err := service.Attendance(ctx, student, report.AttendanceFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.TotalRecords)
		assert.Equal(t, "50.00%", summary.Percentage)
	})

	t.Run("parent_without_links_gets_the_zero_report", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p2", Role: sec.RoleParent, SchoolID: "school-a"}
		summary, err := service.Attendance(ctx, guardian, report.AttendanceFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalRecords)
		assert.Equal(t, "0.00%", summary.Percentage)
	})

	t.Run("cross_school_student_filter_is_not_found", func(t *testing.T) {
		admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
		_, err := service.Attendance(ctx, admin, report.AttendanceFilter{StudentID: "student-9"})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("parent_filtering_a_non_linked_student_is_forbidden", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
		_, err := service.Attendance(ctx, guardian, report.AttendanceFilter{StudentID: "student-2"})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

/*
TestFeeReport_Reconciliation verifies that stored statuses are reconciled
against the service clock before bucketing.
*/
func TestFeeReport_Reconciliation(t *testing.T) {
	service := newReportFixture(t)
	ctx := context.Background()

	admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
	summary, err := service.Fees(ctx, admin, report.FeeFilter{})
	require.NoError(t, err)

	// fee-1 is pending but due 2026-03-01, two weeks before the fixed clock.
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, "150.00", summary.TotalBilled)
	assert.Equal(t, 1, summary.Overdue.Count)
	assert.Equal(t, "100.00", summary.Overdue.Total)
	assert.Equal(t, 1, summary.Pending.Count)
}

/*
TestStudentReport verifies the combined summary and its target checks.
*/
func TestStudentReport(t *testing.T) {
	service := newReportFixture(t)
	ctx := context.Background()

	t.Run("parent_reads_a_linked_student", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
		summary, err := service.Student(ctx, guardian, "student-1")
		require.NoError(t, err)

		assert.Equal(t, "student-1", summary.StudentID)
		assert.Equal(t, 2, summary.Attendance.TotalRecords)
		assert.Equal(t, "100.00", summary.Fees.Overdue.Total)
		assert.Equal(t, 1, summary.Exams.Count)
		require.Len(t, summary.ByExam, 1)
		assert.Equal(t, "Midterm", summary.ByExam[0].ExamName)
		assert.Equal(t, day(t, "2026-03-15"), summary.GeneratedAt)
	})

	t.Run("parent_reading_a_non_linked_student_is_forbidden", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
		_, err := service.Student(ctx, guardian, "student-2")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("cross_school_student_is_not_found", func(t *testing.T) {
		admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
		_, err := service.Student(ctx, admin, "student-9")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestExamReport_Scopes verifies the exam aggregation path end to end.
*/
func TestExamReport_Scopes(t *testing.T) {
	service := newReportFixture(t)
	ctx := context.Background()

	t.Run("student_sees_only_their_own_marks", func(t *testing.T) {
		student := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		summary, err := service.Exams(ctx, student, report.ExamFilter{})
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Count)
		assert.InDelta(t, 80, summary.Average, 0.001)
		require.Len(t, summary.ByStudent, 1)
		assert.Equal(t, "student-1", summary.ByStudent[0].StudentID)
	})

	t.Run("school_admin_sees_the_whole_school", func(t *testing.T) {
		admin := authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
		summary, err := service.Exams(ctx, admin, report.ExamFilter{})
		require.NoError(t, err)

		assert.Equal(t, 2, summary.Count)
		assert.InDelta(t, 70, summary.Average, 0.001)
		assert.InDelta(t, 60, summary.Lowest, 0.001)
	})
}
