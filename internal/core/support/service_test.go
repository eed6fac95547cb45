// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package support_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/support"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

type fakeRepo struct {
	tickets map[string]*support.Ticket
}

func (r *fakeRepo) ListTickets(_ context.Context, q support.ListQuery) ([]*support.Ticket, int, error) {
	var matched []*support.Ticket
	for _, t := range r.tickets {
		if q.SchoolID != "" && t.SchoolID != q.SchoolID {
			continue
		}
		if q.CreatedBy != "" && t.CreatedBy != q.CreatedBy {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		copied := *t
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetTicket(_ context.Context, id string) (*support.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) CreateTicket(_ context.Context, t *support.Ticket) error {
	copied := *t
	r.tickets[t.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateTicket(_ context.Context, t *support.Ticket) error {
	if _, ok := r.tickets[t.ID]; !ok {
		return dberr.ErrNotFound
	}
	copied := *t
	r.tickets[t.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteTicket(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
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

func newSupportFixture(t *testing.T) (*support.Service, *fakeRepo) {
	t.Helper()

	directory := &fakeDirectory{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-9": "school-b",
		},
		studentByUser: map[string]string{"user-s1": "student-1"},
		linksByUser:   map[string][]string{"user-p1": {"student-1"}},
	}

	repo := &fakeRepo{tickets: map[string]*support.Ticket{
		"ticket-1": {ID: "ticket-1", SchoolID: "school-a", CreatedBy: "user-s1", Subject: "Broken chair", Status: support.StatusOpen},
		"ticket-2": {ID: "ticket-2", SchoolID: "school-a", CreatedBy: "user-p1", StudentID: "student-1", Subject: "Fee question", Status: support.StatusOpen},
	}}

	return support.NewService(repo, authz.NewEngine(directory), directory, slog.Default()), repo
}

func guardian() authz.Identity {
	return authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}
}

func schoolAdmin() authz.Identity {
	return authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
}

/*
TestCreateTicket covers the parent linkage rule and the staff path.
*/
func TestCreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("parent_must_name_a_student", func(t *testing.T) {
		service, _ := newSupportFixture(t)

		_, err := service.CreateTicket(ctx, guardian(), support.CreateInput{
			Subject: "Question", Body: "About the fees.",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("parent_cannot_name_a_non_linked_student", func(t *testing.T) {
		service, _ := newSupportFixture(t)

		_, err := service.CreateTicket(ctx, guardian(), support.CreateInput{
			Subject: "Question", Body: "About the fees.", StudentID: "student-9",
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("parent_creates_for_linked_student", func(t *testing.T) {
		service, repo := newSupportFixture(t)

		created, err := service.CreateTicket(ctx, guardian(), support.CreateInput{
			Subject: "Question", Body: "About the fees.", StudentID: "student-1",
		})
		require.NoError(t, err)
		assert.Equal(t, support.StatusOpen, created.Status)
		assert.Equal(t, "user-p1", created.CreatedBy)
		assert.Contains(t, repo.tickets, created.ID)
	})

	t.Run("teacher_creates_without_student", func(t *testing.T) {
		service, _ := newSupportFixture(t)

		viewer := authz.Identity{UserID: "user-t1", Role: sec.RoleTeacher, SchoolID: "school-a"}
		created, err := service.CreateTicket(ctx, viewer, support.CreateInput{
			Subject: "Projector broken", Body: "Room 204.",
		})
		require.NoError(t, err)
		assert.Empty(t, created.StudentID)
	})
}

/*
TestTicketVisibility verifies the creator-bound rule below admin.
*/
func TestTicketVisibility(t *testing.T) {
	service, _ := newSupportFixture(t)
	ctx := context.Background()

	t.Run("creator_sees_own_tickets_only", func(t *testing.T) {
		student := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		tickets, _, err := service.ListTickets(ctx, student, "", 10, 0)
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, "ticket-1", tickets[0].ID)
	})

	t.Run("admin_sees_the_whole_queue", func(t *testing.T) {
		tickets, total, err := service.ListTickets(ctx, schoolAdmin(), "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, tickets, 2)
	})

	t.Run("reading_someone_elses_ticket_is_forbidden", func(t *testing.T) {
		student := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		_, err := service.GetTicket(ctx, student, "ticket-2")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

/*
TestUpdateStatus verifies the admin-driven workflow.
*/
func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("admin_moves_the_ticket", func(t *testing.T) {
		service, repo := newSupportFixture(t)

		updated, err := service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", support.StatusResolved)
		require.NoError(t, err)
		assert.Equal(t, support.StatusResolved, updated.Status)
		assert.Equal(t, support.StatusResolved, repo.tickets["ticket-1"].Status)
	})

	t.Run("creator_cannot_change_status", func(t *testing.T) {
		service, _ := newSupportFixture(t)

		student := authz.Identity{UserID: "user-s1", Role: sec.RoleStudent, SchoolID: "school-a"}
		_, err := service.UpdateStatus(ctx, student, "ticket-1", support.StatusClosed)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("unknown_status_is_invalid", func(t *testing.T) {
		service, _ := newSupportFixture(t)

		_, err := service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", "escalated")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("workflow_only_moves_forward", func(t *testing.T) {
		service, repo := newSupportFixture(t)

		_, err := service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", support.StatusInProgress)
		require.NoError(t, err)

		// Reopening is a conflict; the ticket stays where it was.
		_, err = service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", support.StatusOpen)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Equal(t, support.StatusInProgress, repo.tickets["ticket-1"].Status)

		// Re-asserting the current stage is a conflict too.
		_, err = service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", support.StatusInProgress)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)

		// Skipping straight to closed is allowed.
		updated, err := service.UpdateStatus(ctx, schoolAdmin(), "ticket-1", support.StatusClosed)
		require.NoError(t, err)
		assert.Equal(t, support.StatusClosed, updated.Status)
	})
}
