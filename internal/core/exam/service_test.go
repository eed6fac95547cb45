// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exam_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	results map[string]*exam.Result
}

func (r *fakeRepo) ListResults(_ context.Context, q exam.ListQuery) ([]*exam.Result, int, error) {
	var matched []*exam.Result
	for _, res := range r.results {
		if q.SchoolID != "" && res.SchoolID != q.SchoolID {
			continue
		}
		if q.StudentIDs != nil && !contains(q.StudentIDs, res.StudentID) {
			continue
		}
		if q.SubjectID != "" && res.SubjectID != q.SubjectID {
			continue
		}
		copied := *res
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetResult(_ context.Context, id string) (*exam.Result, error) {
	res, ok := r.results[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *fakeRepo) CreateResult(_ context.Context, res *exam.Result) error {
	for _, existing := range r.results {
		if existing.StudentID == res.StudentID && existing.SubjectID == res.SubjectID && existing.ExamName == res.ExamName {
			return dberr.ErrConflict
		}
	}
	copied := *res
	r.results[res.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateResult(_ context.Context, res *exam.Result) error {
	if _, ok := r.results[res.ID]; !ok {
		return dberr.ErrNotFound
	}
	copied := *res
	r.results[res.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteResult(_ context.Context, id string) error {
	if _, ok := r.results[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.results, id)
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

func newExamFixture(t *testing.T) (*exam.Service, *fakeRepo) {
	t.Helper()

	directory := &fakeDirectory{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-9": "school-b",
		},
		studentByUser: map[string]string{"user-s1": "student-1"},
		linksByUser:   map[string][]string{"user-p1": {"student-1"}},
	}

	repo := &fakeRepo{results: map[string]*exam.Result{
		"res-1": {ID: "res-1", SchoolID: "school-a", StudentID: "student-1", SubjectID: "subject-math", ExamName: "Midterm", Score: 82, MaxScore: 100, Date: day("2026-03-01")},
		"res-9": {ID: "res-9", SchoolID: "school-b", StudentID: "student-9", SubjectID: "subject-math", ExamName: "Midterm", Score: 40, MaxScore: 100, Date: day("2026-03-01")},
	}}

	return exam.NewService(repo, authz.NewEngine(directory), directory, slog.Default()), repo
}

func subjectTeacher() authz.Identity {
	return authz.Identity{UserID: "user-t1", Role: sec.RoleTeacher, SchoolID: "school-a"}
}

/*
TestRecord covers score entry validation, the per-exam uniqueness rule, and
tenancy.
*/
func TestRecord(t *testing.T) {
	ctx := context.Background()

	valid := exam.RecordInput{
		StudentID: "student-1", SubjectID: "subject-math", ExamName: "Final",
		Score: 91, MaxScore: 100, Date: day("2026-06-10"),
	}

	t.Run("teacher_records_score", func(t *testing.T) {
		service, repo := newExamFixture(t)

		res, err := service.Record(ctx, subjectTeacher(), valid)
		require.NoError(t, err)
		assert.Equal(t, "user-t1", res.RecordedBy)
		assert.Contains(t, repo.results, res.ID)
	})

	t.Run("duplicate_exam_entry_is_a_conflict", func(t *testing.T) {
		service, _ := newExamFixture(t)

		input := valid
		input.ExamName = "Midterm" // already recorded for student-1
		_, err := service.Record(ctx, subjectTeacher(), input)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("score_above_max_is_invalid", func(t *testing.T) {
		service, _ := newExamFixture(t)

		input := valid
		input.Score = 120
		_, err := service.Record(ctx, subjectTeacher(), input)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("cross_school_student_is_forbidden", func(t *testing.T) {
		service, _ := newExamFixture(t)

		input := valid
		input.StudentID = "student-9"
		_, err := service.Record(ctx, subjectTeacher(), input)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

/*
TestRescore verifies bounds checking against the stored maximum.
*/
func TestRescore(t *testing.T) {
	ctx := context.Background()

	t.Run("score_is_replaced", func(t *testing.T) {
		service, repo := newExamFixture(t)

		res, err := service.Rescore(ctx, subjectTeacher(), "res-1", 88)
		require.NoError(t, err)
		assert.Equal(t, float64(88), res.Score)
		assert.Equal(t, float64(88), repo.results["res-1"].Score)
	})

	t.Run("score_above_stored_max_is_invalid", func(t *testing.T) {
		service, _ := newExamFixture(t)

		_, err := service.Rescore(ctx, subjectTeacher(), "res-1", 101)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("cross_school_result_reads_as_not_found", func(t *testing.T) {
		service, _ := newExamFixture(t)

		_, err := service.Rescore(ctx, subjectTeacher(), "res-9", 50)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestListResults_RoleScopes verifies list narrowing per role.
*/
func TestListResults_RoleScopes(t *testing.T) {
	service, _ := newExamFixture(t)
	ctx := context.Background()

	t.Run("student_sees_own_results", func(t *testing.T) {
		self := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		results, _, err := service.ListResults(ctx, self, exam.Filter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "student-1", results[0].StudentID)
	})

	t.Run("parent_filter_on_non_linked_student_is_forbidden", func(t *testing.T) {
		guardian := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
		_, _, err := service.ListResults(ctx, guardian, exam.Filter{StudentID: "student-9"}, 10, 0)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}
