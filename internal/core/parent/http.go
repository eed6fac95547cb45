// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package parent

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

// Routes registers the parent surface. The whole family is admin-only; a
// parent acts on the system through the student-scoped resources, not here.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

	router.Get("/", handler.listParents)
	router.Get("/{id}", handler.getParent)
	router.Post("/", handler.createParent)
	router.Post("/{id}/students/{studentID}", handler.linkStudent)
	router.Delete("/{id}/students/{studentID}", handler.unlinkStudent)
	router.Delete("/{id}", handler.deleteParent)

	return router
}

func (handler *Handler) listParents(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	parents, total, err := handler.service.ListParents(request.Context(), authz.IdentityFromClaims(claims), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, parents, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getParent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.GetParent(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (handler *Handler) createParent(writer http.ResponseWriter, request *http.Request) {
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

	p, err := handler.service.CreateParent(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, p)
}

func (handler *Handler) linkStudent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.LinkStudent(request.Context(), authz.IdentityFromClaims(claims),
		requestutil.ID(request, "id"), requestutil.ID(request, "studentID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (handler *Handler) unlinkStudent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.UnlinkStudent(request.Context(), authz.IdentityFromClaims(claims),
		requestutil.ID(request, "id"), requestutil.ID(request, "studentID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (handler *Handler) deleteParent(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteParent(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
