// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exam

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

	router.Get("/", handler.listResults)

	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher))

		staffRoute.Post("/", handler.record)
		staffRoute.Patch("/{id}", handler.rescore)
	})

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

		adminRoute.Delete("/{id}", handler.remove)
	})

	return router
}

func (handler *Handler) listResults(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		StudentID: request.URL.Query().Get("student_id"),
		SubjectID: request.URL.Query().Get("subject_id"),
		ExamName:  request.URL.Query().Get("exam"),
	}

	results, total, err := handler.service.ListResults(request.Context(), authz.IdentityFromClaims(claims), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, results, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) record(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input RecordInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Record(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, r)
}

func (handler *Handler) rescore(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Score float64 `json:"score"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Rescore(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"), input.Score)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
