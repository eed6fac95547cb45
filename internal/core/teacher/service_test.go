// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package teacher_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/teacher"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	teachers map[string]*teacher.Teacher
	accounts map[string]teacher.NewAccount
	subjects map[string]*teacher.SubjectAssignment
}

func (r *fakeRepo) ListTeachers(_ context.Context, q teacher.ListQuery) ([]*teacher.Teacher, int, error) {
	var matched []*teacher.Teacher
	for _, t := range r.teachers {
		if q.SchoolID != "" && t.SchoolID != q.SchoolID {
			continue
		}
		copied := *t
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetTeacher(_ context.Context, id string) (*teacher.Teacher, error) {
	t, ok := r.teachers[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *t
	copied.SubjectIDs = nil
	for subjectID, assignment := range r.subjects {
		if assignment.TeacherID == id {
			copied.SubjectIDs = append(copied.SubjectIDs, subjectID)
		}
	}
	return &copied, nil
}

func (r *fakeRepo) CreateTeacherWithAccount(_ context.Context, account teacher.NewAccount, t *teacher.Teacher) error {
	r.accounts[account.ID] = account
	copied := *t
	r.teachers[t.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteTeacher(_ context.Context, id, userID string) error {
	if _, ok := r.teachers[id]; !ok {
		return dberr.ErrNotFound
	}
	for _, assignment := range r.subjects {
		if assignment.TeacherID == id {
			assignment.TeacherID = ""
		}
	}
	delete(r.teachers, id)
	delete(r.accounts, userID)
	return nil
}

func (r *fakeRepo) SubjectAssignment(_ context.Context, subjectID string) (teacher.SubjectAssignment, error) {
	assignment, ok := r.subjects[subjectID]
	if !ok {
		return teacher.SubjectAssignment{}, dberr.ErrNotFound
	}
	return *assignment, nil
}

func (r *fakeRepo) AssignSubject(_ context.Context, subjectID, teacherID string) error {
	assignment, ok := r.subjects[subjectID]
	if !ok {
		return dberr.ErrNotFound
	}
	if assignment.TeacherID != "" {
		return dberr.ErrConflict
	}
	assignment.TeacherID = teacherID
	return nil
}

func (r *fakeRepo) UnassignSubject(_ context.Context, subjectID string) error {
	assignment, ok := r.subjects[subjectID]
	if !ok {
		return dberr.ErrNotFound
	}
	assignment.TeacherID = ""
	return nil
}

// noopResolver satisfies the scope engine; staff scopes never hit it.
type noopResolver struct{}

func (noopResolver) StudentSelf(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}
func (noopResolver) TeacherSelf(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}
func (noopResolver) LinkedStudents(context.Context, string) ([]string, error) {
	return nil, dberr.ErrNotFound
}
func (noopResolver) StudentSchool(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}
func (noopResolver) ClassSchool(context.Context, string) (string, error) {
	return "", dberr.ErrNotFound
}

func newTeacherFixture(t *testing.T) (*teacher.Service, *fakeRepo) {
	t.Helper()

	repo := &fakeRepo{
		teachers: map[string]*teacher.Teacher{
			"teacher-1": {ID: "teacher-1", UserID: "user-t1", SchoolID: "school-a"},
			"teacher-2": {ID: "teacher-2", UserID: "user-t2", SchoolID: "school-a"},
			"teacher-9": {ID: "teacher-9", UserID: "user-t9", SchoolID: "school-b"},
		},
		accounts: map[string]teacher.NewAccount{
			"user-t1": {ID: "user-t1"},
			"user-t2": {ID: "user-t2"},
			"user-t9": {ID: "user-t9"},
		},
		subjects: map[string]*teacher.SubjectAssignment{
			"subject-math":    {SchoolID: "school-a"},
			"subject-physics": {SchoolID: "school-a", TeacherID: "teacher-2"},
			"subject-remote":  {SchoolID: "school-b"},
		},
	}

	return teacher.NewService(repo, authz.NewEngine(noopResolver{}), slog.Default()), repo
}

func schoolAdmin() authz.Identity {
	return authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
}

/*
TestAssignSubject covers the single-holder rule: free subjects can be taken,
held subjects conflict, and other schools' subjects read as absent.
*/
func TestAssignSubject(t *testing.T) {
	ctx := context.Background()

	t.Run("free_subject_is_assigned", func(t *testing.T) {
		service, repo := newTeacherFixture(t)

		updated, err := service.AssignSubject(ctx, schoolAdmin(), "teacher-1", "subject-math")
		require.NoError(t, err)
		assert.Contains(t, updated.SubjectIDs, "subject-math")
		assert.Equal(t, "teacher-1", repo.subjects["subject-math"].TeacherID)
	})

	t.Run("held_subject_is_a_conflict", func(t *testing.T) {
		service, repo := newTeacherFixture(t)

		_, err := service.AssignSubject(ctx, schoolAdmin(), "teacher-1", "subject-physics")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)

		// The holder is unchanged.
		assert.Equal(t, "teacher-2", repo.subjects["subject-physics"].TeacherID)
	})

	t.Run("re_assigning_to_the_holder_is_a_conflict", func(t *testing.T) {
		service, _ := newTeacherFixture(t)

		_, err := service.AssignSubject(ctx, schoolAdmin(), "teacher-2", "subject-physics")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("cross_school_subject_reads_as_not_found", func(t *testing.T) {
		service, _ := newTeacherFixture(t)

		_, err := service.AssignSubject(ctx, schoolAdmin(), "teacher-1", "subject-remote")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestUnassignSubject verifies release and the not-the-holder rejection.
*/
func TestUnassignSubject(t *testing.T) {
	ctx := context.Background()

	t.Run("holder_releases_subject", func(t *testing.T) {
		service, repo := newTeacherFixture(t)

		updated, err := service.UnassignSubject(ctx, schoolAdmin(), "teacher-2", "subject-physics")
		require.NoError(t, err)
		assert.NotContains(t, updated.SubjectIDs, "subject-physics")
		assert.Empty(t, repo.subjects["subject-physics"].TeacherID)
	})

	t.Run("non_holder_is_rejected", func(t *testing.T) {
		service, _ := newTeacherFixture(t)

		_, err := service.UnassignSubject(ctx, schoolAdmin(), "teacher-1", "subject-physics")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestDeleteTeacher verifies the release-on-delete behavior: the account goes
with the profile, and held subjects become unassigned rather than deleted.
*/
func TestDeleteTeacher(t *testing.T) {
	service, repo := newTeacherFixture(t)

	require.NoError(t, service.DeleteTeacher(context.Background(), schoolAdmin(), "teacher-2"))

	_, profileExists := repo.teachers["teacher-2"]
	_, accountExists := repo.accounts["user-t2"]
	assert.False(t, profileExists)
	assert.False(t, accountExists)

	// The subject row survives, unassigned.
	require.Contains(t, repo.subjects, "subject-physics")
	assert.Empty(t, repo.subjects["subject-physics"].TeacherID)
}

/*
TestGetTeacher_CrossSchool verifies the tenant tie-break on staff reads.
*/
func TestGetTeacher_CrossSchool(t *testing.T) {
	service, _ := newTeacherFixture(t)

	_, err := service.GetTeacher(context.Background(), schoolAdmin(), "teacher-9")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestCreateTeacher verifies account provisioning and input validation.
*/
func TestCreateTeacher(t *testing.T) {
	t.Run("valid_input_hires_teacher", func(t *testing.T) {
		service, repo := newTeacherFixture(t)

		created, err := service.CreateTeacher(context.Background(), schoolAdmin(), teacher.CreateInput{
			Email: "budi@example.com", Password: "correct-horse", FullName: "Budi Santoso",
		})
		require.NoError(t, err)
		assert.Equal(t, "school-a", created.SchoolID)

		_, ok := repo.accounts[created.UserID]
		assert.True(t, ok)
	})

	t.Run("short_password_is_invalid", func(t *testing.T) {
		service, _ := newTeacherFixture(t)

		_, err := service.CreateTeacher(context.Background(), schoolAdmin(), teacher.CreateInput{
			Email: "budi@example.com", Password: "short", FullName: "Budi Santoso",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}
