// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attendance

import (
	"net/http"
	"time"

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

	router.Get("/", handler.listRecords)

	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher))

		staffRoute.Post("/", handler.mark)
		staffRoute.Patch("/{id}", handler.correct)
	})

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

		adminRoute.Delete("/{id}", handler.remove)
	})

	return router
}

// queryDate parses a day-granular date query parameter, zero when absent.
func queryDate(request *http.Request, key string) time.Time {
	raw := request.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func (handler *Handler) listRecords(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		StudentID: request.URL.Query().Get("student_id"),
		Status:    Status(request.URL.Query().Get("status")),
		From:      queryDate(request, "from"),
		To:        queryDate(request, "to"),
	}

	records, total, err := handler.service.ListRecords(request.Context(), authz.IdentityFromClaims(claims), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) mark(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input MarkInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Mark(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, r)
}

func (handler *Handler) correct(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Status Status `json:"status"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Correct(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"), input.Status)
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
