// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fee

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/middleware"
	requestutil "github.com/taibuivan/sekola/internal/platform/request"
	"github.com/taibuivan/sekola/internal/platform/respond"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listFees)
	router.Get("/{id}", handler.getFee)

	// Fee mutations are admin-only; the scope engine re-checks, the route
	// guard just trims the surface early.
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

		adminRoute.Post("/", handler.createFee)
		adminRoute.Patch("/{id}", handler.updateFee)
		adminRoute.Post("/{id}/pay", handler.markPaid)
		adminRoute.Delete("/{id}", handler.deleteFee)
	})

	return router
}

func (handler *Handler) listFees(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		StudentID: request.URL.Query().Get("student_id"),
		Status:    Status(request.URL.Query().Get("status")),
	}

	fees, total, err := handler.service.ListFees(request.Context(), authz.IdentityFromClaims(claims), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, fees, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getFee(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	f, err := handler.service.GetFee(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, f)
}

func (handler *Handler) createFee(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	f, err := handler.service.CreateFee(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, f)
}

func (handler *Handler) updateFee(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	f, err := handler.service.UpdateFee(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, f)
}

func (handler *Handler) markPaid(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	f, err := handler.service.MarkPaid(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, f)
}

func (handler *Handler) deleteFee(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteFee(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
