// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/uuid"
)

// StudentDirectory answers which school a student belongs to. Satisfied by
// [authz.PostgresResolver]; narrowed to an interface so tests can fake it.
type StudentDirectory interface {
	StudentSchool(ctx context.Context, studentID string) (string, error)
}

// Clock abstracts "today" so status reconciliation is testable.
type Clock func() time.Time

type Service struct {
	repo     Repository
	scopes   *authz.Engine
	students StudentDirectory
	now      Clock
	logger   *slog.Logger
}

func NewService(repo Repository, scopes *authz.Engine, students StudentDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		scopes:   scopes,
		students: students,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the service clock. Test hook.
func (service *Service) WithClock(clock Clock) *Service {
	service.now = clock
	return service
}

// ListFees returns the fees visible to the viewer, reconciled to their
// effective status for today.
func (service *Service) ListFees(ctx context.Context, viewer authz.Identity, filter Filter, limit, offset int) ([]*Fee, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionList, authz.Target{StudentID: filter.StudentID})
	if err != nil {
		return nil, 0, err
	}

	if scope.Empty {
		return []*Fee{}, 0, nil
	}

	today := service.now()
	fees, total, err := service.repo.ListFees(ctx, ListQuery{
		SchoolID:   scope.SchoolID,
		StudentIDs: scope.StudentIDs,
		Status:     filter.Status,
		Today:      today,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, 0, err
	}

	for _, f := range fees {
		f.Reconcile(today)
	}

	return fees, total, nil
}

// GetFee returns one fee if it lies within the viewer's scope.
func (service *Service) GetFee(ctx context.Context, viewer authz.Identity, id string) (*Fee, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	f, err := service.repo.GetFee(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Fee", f.SchoolID, f.StudentID); err != nil {
		return nil, err
	}

	f.Reconcile(service.now())
	return f, nil
}

// CreateInput holds the data required to assign a new fee to a student.
type CreateInput struct {
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
}

// CreateFee assigns a new pending fee to a student of the viewer's school.
//
// Assigning across schools is an explicit Forbidden, distinct from the
// read-path NotFound tie-break: the admin named the student directly, and the
// student lookup itself already went through the existence check.
func (service *Service) CreateFee(ctx context.Context, viewer authz.Identity, input CreateInput) (*Fee, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldStudentID, input.StudentID)
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 200)
	validator.Custom(FieldAmount, input.Amount <= 0, "Amount must be greater than zero")
	validator.Custom(FieldDueDate, !input.DueDate.After(service.now()), "Due date must be in the future")
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

	f := &Fee{
		ID:        uuid.New(),
		SchoolID:  studentSchool,
		StudentID: input.StudentID,
		Title:     input.Title,
		Amount:    input.Amount,
		DueDate:   input.DueDate,
		Status:    StatusPending,
	}

	if err := service.repo.CreateFee(ctx, f); err != nil {
		return nil, err
	}

	service.logger.Info("fee_created",
		slog.String("fee_id", f.ID),
		slog.String("student_id", f.StudentID),
		slog.Float64("amount", f.Amount),
	)
	return f, nil
}

// UpdateInput holds the optional fields of a fee update. Nil fields are left
// unchanged.
type UpdateInput struct {
	Title   *string    `json:"title"`
	Amount  *float64   `json:"amount"`
	DueDate *time.Time `json:"due_date"`
	Status  *Status    `json:"status"`
}

// UpdateFee applies a partial update to a fee within the viewer's school.
//
// When the update omits status, the stored status is recomputed from the
// (possibly updated) due date, so editing unrelated fields can never
// accidentally un-overdue a fee. An explicit status is rejected once the fee
// is PAID; settlement only moves through MarkPaid and never backwards.
func (service *Service) UpdateFee(ctx context.Context, viewer authz.Identity, id string, input UpdateInput) (*Fee, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	f, err := service.repo.GetFee(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Fee", f.SchoolID, f.StudentID); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 200)
		f.Title = *input.Title
	}
	if input.Amount != nil {
		validator.Custom(FieldAmount, *input.Amount <= 0, "Amount must be greater than zero")
		f.Amount = *input.Amount
	}
	if input.DueDate != nil {
		f.DueDate = *input.DueDate
	}
	if input.Status != nil {
		validator.Custom(FieldStatus, !input.Status.IsValid(), "Unknown fee status")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Status != nil {
		// PAID is terminal: once settled, no status write may regress the fee
		// (which would leave paid_at dangling on a non-paid row).
		if f.Status == StatusPaid {
			return nil, apperr.Conflict("Fee is already marked as paid")
		}
		f.Status = *input.Status
		if f.Status == StatusPaid && f.PaidAt == nil {
			paidAt := service.now()
			f.PaidAt = &paidAt
		}
	} else {
		f.Status = EffectiveStatus(f.Status, f.DueDate, service.now())
	}

	if err := service.repo.UpdateFee(ctx, f); err != nil {
		return nil, err
	}

	service.logger.Info("fee_updated", slog.String("fee_id", f.ID))
	return f, nil
}

// MarkPaid transitions a fee to the terminal PAID state.
//
// Marking an already-paid fee again is a Conflict, consistent with the other
// uniqueness violations, not a silent no-op.
func (service *Service) MarkPaid(ctx context.Context, viewer authz.Identity, id string) (*Fee, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	f, err := service.repo.GetFee(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Fee", f.SchoolID, f.StudentID); err != nil {
		return nil, err
	}

	if f.Status == StatusPaid {
		return nil, apperr.Conflict("Fee is already marked as paid")
	}

	paidAt := service.now()
	f.Status = StatusPaid
	f.PaidAt = &paidAt

	if err := service.repo.UpdateFee(ctx, f); err != nil {
		return nil, err
	}

	service.logger.Info("fee_marked_paid",
		slog.String("fee_id", f.ID),
		slog.String("student_id", f.StudentID),
	)
	return f, nil
}

// DeleteFee removes a fee from the viewer's school.
func (service *Service) DeleteFee(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceFees, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	f, err := service.repo.GetFee(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Fee", f.SchoolID, f.StudentID); err != nil {
		return err
	}

	if err := service.repo.DeleteFee(ctx, f.ID); err != nil {
		return err
	}

	service.logger.Warn("fee_deleted", slog.String("fee_id", f.ID))
	return nil
}
