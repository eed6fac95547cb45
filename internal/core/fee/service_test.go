// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/core/fee"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/dberr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

// fakeRepo is an in-memory fee repository. It records the last list query so
// tests can assert what the service asked the store for.
type fakeRepo struct {
	fees      map[string]*fee.Fee
	lastQuery fee.ListQuery
}

func (r *fakeRepo) ListFees(_ context.Context, q fee.ListQuery) ([]*fee.Fee, int, error) {
	r.lastQuery = q
	var matched []*fee.Fee
	for _, f := range r.fees {
		if q.SchoolID != "" && f.SchoolID != q.SchoolID {
			continue
		}
		if q.StudentIDs != nil && !contains(q.StudentIDs, f.StudentID) {
			continue
		}
		copied := *f
		matched = append(matched, &copied)
	}
	return matched, len(matched), nil
}

func (r *fakeRepo) GetFee(_ context.Context, id string) (*fee.Fee, error) {
	f, ok := r.fees[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeRepo) CreateFee(_ context.Context, f *fee.Fee) error {
	copied := *f
	r.fees[f.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateFee(_ context.Context, f *fee.Fee) error {
	if _, ok := r.fees[f.ID]; !ok {
		return dberr.ErrNotFound
	}
	copied := *f
	r.fees[f.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteFee(_ context.Context, id string) error {
	if _, ok := r.fees[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.fees, id)
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

// fakeDirectory resolves relationships and student tenancy from maps.
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

func (d *fakeDirectory) TeacherSelf(_ context.Context, userID string) (string, error) {
	return "", dberr.ErrNotFound
}

func (d *fakeDirectory) LinkedStudents(_ context.Context, userID string) ([]string, error) {
	links, ok := d.linksByUser[userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return links, nil
}

func (d *fakeDirectory) ClassSchool(_ context.Context, classID string) (string, error) {
	return "", dberr.ErrNotFound
}

func newFeeFixture(t *testing.T) (*fee.Service, *fakeRepo) {
	t.Helper()

	directory := &fakeDirectory{
		schoolByStudent: map[string]string{
			"student-1": "school-a",
			"student-2": "school-a",
			"student-9": "school-b",
		},
		studentByUser: map[string]string{"user-s1": "student-1"},
		linksByUser:   map[string][]string{"user-p1": {"student-1"}},
	}

	repo := &fakeRepo{fees: map[string]*fee.Fee{
		"fee-1": {ID: "fee-1", SchoolID: "school-a", StudentID: "student-1", Title: "Term 1", Amount: 500, DueDate: day("2026-03-01"), Status: fee.StatusPending},
		"fee-2": {ID: "fee-2", SchoolID: "school-a", StudentID: "student-2", Title: "Term 1", Amount: 500, DueDate: day("2026-05-01"), Status: fee.StatusPending},
		"fee-9": {ID: "fee-9", SchoolID: "school-b", StudentID: "student-9", Title: "Term 1", Amount: 500, DueDate: day("2026-05-01"), Status: fee.StatusPending},
	}}

	service := fee.NewService(repo, authz.NewEngine(directory), directory, slog.Default()).
		WithClock(func() time.Time { return day("2026-03-15") })

	return service, repo
}

func feeAdmin() authz.Identity {
	return authz.Identity{UserID: "user-a1", Role: sec.RoleSchoolAdmin, SchoolID: "school-a"}
}

/*
TestListFees_ReconcilesStatus verifies that listing reports the derived
status without touching the stored value.
*/
func TestListFees_ReconcilesStatus(t *testing.T) {
	service, repo := newFeeFixture(t)

	fees, total, err := service.ListFees(context.Background(), feeAdmin(), fee.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	byID := map[string]*fee.Fee{}
	for _, f := range fees {
		byID[f.ID] = f
	}

	// fee-1 was due 2026-03-01; today is 2026-03-15.
	assert.Equal(t, fee.StatusOverdue, byID["fee-1"].Status)
	assert.Equal(t, fee.StatusPending, byID["fee-2"].Status)

	// The stored rows are untouched by the read.
	assert.Equal(t, fee.StatusPending, repo.fees["fee-1"].Status)
}

/*
TestListFees_ParentScope verifies the parent closure on the fee list.
*/
func TestListFees_ParentScope(t *testing.T) {
	service, _ := newFeeFixture(t)
	parent := authz.Identity{UserID: "user-p1", Role: sec.RoleParent, SchoolID: "school-a"}

	fees, _, err := service.ListFees(context.Background(), parent, fee.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "student-1", fees[0].StudentID)

	// A non-linked student filter denies instead of returning empty.
	_, _, err = service.ListFees(context.Background(), parent, fee.Filter{StudentID: "student-2"}, 10, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestGetFee_CrossSchool verifies the tie-break: a fee in another school reads
as NotFound, not Forbidden.
*/
func TestGetFee_CrossSchool(t *testing.T) {
	service, _ := newFeeFixture(t)

	_, err := service.GetFee(context.Background(), feeAdmin(), "fee-9")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestCreateFee validates the business rules and the cross-school assign check.
*/
func TestCreateFee(t *testing.T) {
	tests := []struct {
		name      string
		input     fee.CreateInput
		wantCode  string
	}{
		{"cross_school_student_is_forbidden", fee.CreateInput{StudentID: "student-9", Title: "Term 2", Amount: 100, DueDate: day("2026-06-01")}, "FORBIDDEN"},
		{"unknown_student_is_not_found", fee.CreateInput{StudentID: "student-x", Title: "Term 2", Amount: 100, DueDate: day("2026-06-01")}, "NOT_FOUND"},
		{"non_positive_amount_is_invalid", fee.CreateInput{StudentID: "student-1", Title: "Term 2", Amount: 0, DueDate: day("2026-06-01")}, "VALIDATION_ERROR"},
		{"past_due_date_is_invalid", fee.CreateInput{StudentID: "student-1", Title: "Term 2", Amount: 100, DueDate: day("2026-01-01")}, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newFeeFixture(t)
			_, err := service.CreateFee(context.Background(), feeAdmin(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.As(err).Code)
		})
	}

	t.Run("valid_input_creates_pending_fee", func(t *testing.T) {
		service, repo := newFeeFixture(t)
		created, err := service.CreateFee(context.Background(), feeAdmin(), fee.CreateInput{
			StudentID: "student-1", Title: "Term 2", Amount: 750.50, DueDate: day("2026-06-01"),
		})
		require.NoError(t, err)
		assert.Equal(t, fee.StatusPending, created.Status)
		assert.Equal(t, fee.StatusPending, repo.fees[created.ID].Status)
	})
}

/*
TestMarkPaid covers the fee state machine: pending and overdue fees can be
paid, paid is terminal, and paying twice is a conflict.
*/
func TestMarkPaid(t *testing.T) {
	service, repo := newFeeFixture(t)
	ctx := context.Background()

	// fee-1 is effectively overdue today; mark-paid still succeeds.
	paid, err := service.MarkPaid(ctx, feeAdmin(), "fee-1")
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, fee.StatusPaid, repo.fees["fee-1"].Status)

	// Effective status stays paid even with the due date in the past.
	fetched, err := service.GetFee(ctx, feeAdmin(), "fee-1")
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPaid, fetched.Status)

	// Second mark-paid is a conflict, not a no-op.
	_, err = service.MarkPaid(ctx, feeAdmin(), "fee-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestUpdateFee_PaidIsTerminal verifies that no explicit status write can
regress a paid fee: settlement is final, and paid_at never survives on a
non-paid row.
*/
func TestUpdateFee_PaidIsTerminal(t *testing.T) {
	service, repo := newFeeFixture(t)
	ctx := context.Background()

	_, err := service.MarkPaid(ctx, feeAdmin(), "fee-1")
	require.NoError(t, err)

	// An explicit status on a paid fee is rejected, same as double mark-paid.
	pending := fee.StatusPending
	_, err = service.UpdateFee(ctx, feeAdmin(), "fee-1", fee.UpdateInput{Status: &pending})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// The stored row is untouched: still paid, paid_at intact.
	assert.Equal(t, fee.StatusPaid, repo.fees["fee-1"].Status)
	assert.NotNil(t, repo.fees["fee-1"].PaidAt)

	// Editing unrelated fields on a paid fee is still fine and cannot
	// downgrade it either.
	newTitle := "Term 1 (settled)"
	updated, err := service.UpdateFee(ctx, feeAdmin(), "fee-1", fee.UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPaid, updated.Status)
}

/*
TestListFees_StatusFilterUsesServiceClock verifies that the effective-status
list filter is anchored to the service clock rather than the database's idea
of today.
*/
func TestListFees_StatusFilterUsesServiceClock(t *testing.T) {
	service, repo := newFeeFixture(t)

	_, _, err := service.ListFees(context.Background(), feeAdmin(), fee.Filter{Status: fee.StatusOverdue}, 10, 0)
	require.NoError(t, err)

	assert.Equal(t, fee.StatusOverdue, repo.lastQuery.Status)
	assert.Equal(t, day("2026-03-15"), repo.lastQuery.Today)
}

/*
TestUpdateFee_RecomputesStatus verifies that an update omitting status
re-runs the reconciliation against the new due date, so the stored value
cannot be accidentally reset by editing unrelated fields.
*/
func TestUpdateFee_RecomputesStatus(t *testing.T) {
	service, repo := newFeeFixture(t)
	ctx := context.Background()

	newTitle := "Term 1 (adjusted)"
	updated, err := service.UpdateFee(ctx, feeAdmin(), "fee-1", fee.UpdateInput{Title: &newTitle})
	require.NoError(t, err)

	// Due date stayed 2026-03-01, today is 2026-03-15: stored becomes overdue.
	assert.Equal(t, fee.StatusOverdue, updated.Status)
	assert.Equal(t, fee.StatusOverdue, repo.fees["fee-1"].Status)

	// Pushing the due date out reverts the stored status to pending.
	futureDue := day("2026-09-01")
	updated, err = service.UpdateFee(ctx, feeAdmin(), "fee-1", fee.UpdateInput{DueDate: &futureDue})
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPending, updated.Status)
}
