// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package support

import (
	"context"
	"log/slog"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/internal/platform/validate"
	"github.com/taibuivan/sekola/pkg/uuid"
)

// Directory answers the relationship questions ticket creation needs.
type Directory interface {
	StudentSchool(ctx context.Context, studentID string) (string, error)
	LinkedStudents(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	repo      Repository
	scopes    *authz.Engine
	directory Directory
	logger    *slog.Logger
}

func NewService(repo Repository, scopes *authz.Engine, directory Directory, logger *slog.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, directory: directory, logger: logger}
}

// ListTickets returns the ticket queue visible to the viewer: the whole
// school for admins, the viewer's own tickets otherwise.
func (service *Service) ListTickets(ctx context.Context, viewer authz.Identity, status Status, limit, offset int) ([]*Ticket, int, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTickets, authz.ActionList, authz.Target{})
	if err != nil {
		return nil, 0, err
	}

	return service.repo.ListTickets(ctx, ListQuery{
		SchoolID:  scope.SchoolID,
		CreatedBy: scope.UserID,
		Status:    status,
		Limit:     limit,
		Offset:    offset,
	})
}

// GetTicket returns one ticket. Non-admin viewers can only read their own.
func (service *Service) GetTicket(ctx context.Context, viewer authz.Identity, id string) (*Ticket, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTickets, authz.ActionRead, authz.Target{})
	if err != nil {
		return nil, err
	}

	t, err := service.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Ticket", t.SchoolID, ""); err != nil {
		return nil, err
	}
	if scope.UserID != "" && t.CreatedBy != scope.UserID {
		return nil, apperr.Forbidden("Access denied. You can only view your own support tickets")
	}
	return t, nil
}

// CreateInput holds a new support request.
type CreateInput struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	StudentID string `json:"student_id"`
}

// CreateTicket raises a new support request.
//
// A parent must name one of their linked students explicitly; the ticket is
// never silently attributed to "all children". Other roles may name a
// student of their school or none at all.
func (service *Service) CreateTicket(ctx context.Context, viewer authz.Identity, input CreateInput) (*Ticket, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTickets, authz.ActionCreate, authz.Target{})
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldSubject, input.Subject).MaxLen(FieldSubject, input.Subject, 200)
	validator.Required(FieldBody, input.Body).MaxLen(FieldBody, input.Body, 5000)
	if viewer.Role == sec.RoleParent {
		validator.Required(FieldStudentID, input.StudentID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.StudentID != "" {
		if viewer.Role == sec.RoleParent {
			linked, err := service.directory.LinkedStudents(ctx, viewer.UserID)
			if err != nil {
				return nil, apperr.NotFound("Parent profile")
			}
			if !containsString(linked, input.StudentID) {
				return nil, apperr.Forbidden("Access denied. You can only raise tickets for your linked students")
			}
		} else {
			studentSchool, err := service.directory.StudentSchool(ctx, input.StudentID)
			if err != nil {
				return nil, apperr.NotFound("Student")
			}
			if studentSchool != viewer.SchoolID {
				return nil, apperr.NotFound("Student")
			}
		}
	}

	t := &Ticket{
		ID:        uuid.New(),
		SchoolID:  scope.SchoolID,
		CreatedBy: viewer.UserID,
		StudentID: input.StudentID,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    StatusOpen,
	}

	if err := service.repo.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	service.logger.Info("ticket_created",
		slog.String("ticket_id", t.ID),
		slog.String("created_by", t.CreatedBy),
	)
	return t, nil
}

// UpdateStatus moves a ticket through the handling workflow. Admin only.
func (service *Service) UpdateStatus(ctx context.Context, viewer authz.Identity, id string, status Status) (*Ticket, error) {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTickets, authz.ActionUpdate, authz.Target{})
	if err != nil {
		return nil, err
	}

	if !status.IsValid() {
		return nil, validate.RequiredError(FieldStatus, "Unknown ticket status")
	}

	t, err := service.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.PermitRecord("Ticket", t.SchoolID, ""); err != nil {
		return nil, err
	}

	if !t.Status.CanTransitionTo(status) {
		return nil, apperr.Conflict("Ticket status can only move forward in the workflow")
	}

	t.Status = status
	if err := service.repo.UpdateTicket(ctx, t); err != nil {
		return nil, err
	}

	service.logger.Info("ticket_status_updated",
		slog.String("ticket_id", t.ID),
		slog.String("status", string(t.Status)),
	)
	return t, nil
}

// Delete removes a ticket. Admin only.
func (service *Service) Delete(ctx context.Context, viewer authz.Identity, id string) error {
	scope, err := service.scopes.ScopeFor(ctx, viewer, authz.ResourceTickets, authz.ActionDelete, authz.Target{})
	if err != nil {
		return err
	}

	t, err := service.repo.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	if err := scope.PermitRecord("Ticket", t.SchoolID, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteTicket(ctx, t.ID); err != nil {
		return err
	}

	service.logger.Warn("ticket_deleted", slog.String("ticket_id", t.ID))
	return nil
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
