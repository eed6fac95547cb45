// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attendance_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	records map[string]*attendance.Record
}

func (r *fakeRepo) ListRecords(_ context.Context, q attendance.ListQuery) ([]*attendance.Record, int, error) {
	var matched []*attendance.Record
	for _, rec := range r.records {
		if q.SchoolID != "" && rec.SchoolID != q.SchoolID {
			continue
		}
		if q.StudentIDs != nil && !contains(q.StudentIDs, rec.StudentID) {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		copied := *rec
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetRecord(_ context.Context, id string) (*attendance.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeRepo) CreateRecord(_ context.Context, rec *attendance.Record) error {
	for _, existing := range r.records {
		if existing.StudentID == rec.StudentID && existing.Date.Equal(rec.Date) {
			return dberr.ErrConflict
		}
	}
	copied := *rec
	r.records[rec.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateRecord(_ context.Context, rec *attendance.Record) error {
	if _, ok := r.records[rec.ID]; !ok {
		return dberr.ErrNotFound
	}
	copied := *rec
	r.records[rec.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteRecord(_ context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.records, id)
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

// fakeDirectory backs both the scope engine and the student tenancy check.
type fakeDirectory struct {
	schoolByStudent map[string]string
	studentByUser   map[string]string
	linksByUser     map[string][]string
}

func (d *fakeDirectory) StudentSchool(_ context.Context, studentID string) (string, error) {
	if school, ok := d.schoolByStudent[studentID]; ok {
		return school, nil
	}
	return "", dberr.ErrNotFound
}

func (d *fakeDirectory) StudentSelf(_ context.Context, userID string) (string, error) {
	if id, ok := d.studentByUser[userID]; ok {
		return id, nil
	}
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

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func newAttendanceFixture(t *testing.T) (*attendance.Service, *fakeRepo) {
	t.Helper()

	directory := &fakeDirectory{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-9": "school-b",
		},
		studentByUser: map[string]string{"user-s1": "student-1"},
		linksByUser:   map[string][]string{"user-p1": {"student-1"}},
	}

	repo := &fakeRepo{records: map[string]*attendance.Record{
		"rec-1": {ID: "rec-1", SchoolID: "school-a", StudentID: "student-1", Date: day("2026-03-10"), Status: attendance.StatusPresent},
		"rec-9": {ID: "rec-9", SchoolID: "school-b", StudentID: "student-9", Date: day("2026-03-10"), Status: attendance.StatusAbsent},
	}}

	return attendance.NewService(repo, authz.NewEngine(directory), directory, slog.Default()), repo
}

func classTeacher() authz.Identity {
	return authz.Identity{UserID: "user-t1", Role: sec.RoleTeacher, SchoolID: "school-a"}
}

/*
TestMark covers recording, the one-record-per-day rule, and tenancy.
*/
func TestMark(t *testing.T) {
	ctx := context.Background()

	t.Run("teacher_marks_attendance", func(t *testing.T) {
		service, repo := newAttendanceFixture(t)

		rec, err := service.Mark(ctx, classTeacher(), attendance.MarkInput{
			StudentID: "student-1", Date: day("2026-03-11"), Status: attendance.StatusLate,
		})
		require.NoError(t, err)
		assert.Equal(t, "user-t1", rec.MarkedBy)
		assert.Contains(t, repo.records, rec.ID)
	})

	t.Run("second_mark_for_the_day_is_a_conflict", func(t *testing.T) {
		service, _ := newAttendanceFixture(t)

		_, err := service.Mark(ctx, classTeacher(), attendance.MarkInput{
			StudentID: "student-1", Date: day("2026-03-10"), Status: attendance.StatusPresent,
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("time_of_day_is_discarded", func(t *testing.T) {
		service, _ := newAttendanceFixture(t)

		// Same calendar day as rec-1, different wall clock: still a conflict.
		_, err := service.Mark(ctx, classTeacher(), attendance.MarkInput{
			StudentID: "student-1",
			Date:      time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
			Status:    attendance.StatusPresent,
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("cross_school_student_is_forbidden", func(t *testing.T) {
		service, _ := newAttendanceFixture(t)

		_, err := service.Mark(ctx, classTeacher(), attendance.MarkInput{
			StudentID: "student-9", Date: day("2026-03-11"), Status: attendance.StatusPresent,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("unknown_status_is_invalid", func(t *testing.T) {
		service, _ := newAttendanceFixture(t)

		_, err := service.Mark(ctx, classTeacher(), attendance.MarkInput{
			StudentID: "student-1", Date: day("2026-03-11"), Status: "asleep",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestListRecords_RoleScopes verifies list narrowing for students and parents,
and that a student cannot mark attendance at all.
*/
func TestListRecords_RoleScopes(t *testing.T) {
	service, _ := newAttendanceFixture(t)
	ctx := context.Background()

	t.Run("student_sees_own_records", func(t *testing.T) {
		self := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		records, _, err := service.ListRecords(ctx, self, attendance.Filter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "student-1", records[0].StudentID)
	})

	t.Run("parent_sees_linked_children", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
		records, _, err := service.ListRecords(ctx, guardian, attendance.Filter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "student-1", records[0].StudentID)
	})

	t.Run("student_cannot_mark", func(t *testing.T) {
		self := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		_, err := service.Mark(ctx, self, attendance.MarkInput{
			StudentID: "student-1", Date: day("2026-03-11"), Status: attendance.StatusPresent,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

/*
TestCorrect verifies status replacement and the cross-school tie-break.
*/
func TestCorrect(t *testing.T) {
	ctx := context.Background()

	t.Run("status_is_replaced", func(t *testing.T) {
		service, repo := newAttendanceFixture(t)

		rec, err := service.Correct(ctx, classTeacher(), "rec-1", attendance.StatusExcused)
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusExcused, rec.Status)
		assert.Equal(t, attendance.StatusExcused, repo.records["rec-1"].Status)
	})

	t.Run("cross_school_record_reads_as_not_found", func(t *testing.T) {
		service, _ := newAttendanceFixture(t)

		_, err := service.Correct(ctx, classTeacher(), "rec-9", attendance.StatusPresent)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}
