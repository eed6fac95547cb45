// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package school

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

// Routes registers the tenancy surface under /schools.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Group(func(superRoute chi.Router) {
		superRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin))

		superRoute.Get("/", handler.listSchools)
		superRoute.Post("/", handler.createSchool)
		superRoute.Patch("/{id}", handler.updateSchool)
		superRoute.Delete("/{id}", handler.deleteSchool)
	})

	router.Get("/{id}", handler.getSchool)
	return router
}

// StructureRoutes registers class/section/subject management under /classes.
func (handler *Handler) StructureRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listClasses)
	router.Get("/{classID}/sections", handler.listSections)
	router.Get("/{classID}/subjects", handler.listSubjects)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

		adminRoute.Post("/", handler.createClass)
		adminRoute.Delete("/{classID}", handler.deleteClass)
		adminRoute.Post("/{classID}/sections", handler.createSection)
		adminRoute.Delete("/{classID}/sections/{id}", handler.deleteSection)
		adminRoute.Post("/{classID}/subjects", handler.createSubject)
		adminRoute.Delete("/{classID}/subjects/{id}", handler.deleteSubject)
	})

	return router
}

// ── Schools ──────────────────────────────────────────────────────────────

func (handler *Handler) listSchools(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	schools, total, err := handler.service.ListSchools(request.Context(), authz.IdentityFromClaims(claims),
		request.URL.Query().Get("q"), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, schools, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getSchool(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.GetSchool(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

func (handler *Handler) createSchool(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SchoolInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.CreateSchool(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, s)
}

func (handler *Handler) updateSchool(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SchoolInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.UpdateSchool(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

func (handler *Handler) deleteSchool(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSchool(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// ── Classes, sections, subjects ──────────────────────────────────────────

func (handler *Handler) listClasses(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	classes, err := handler.service.ListClasses(request.Context(), authz.IdentityFromClaims(claims),
		request.URL.Query().Get("school_id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, classes)
}

func (handler *Handler) createClass(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ClassInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.CreateClass(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, c)
}

func (handler *Handler) deleteClass(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteClass(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "classID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listSections(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sections, err := handler.service.ListSections(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "classID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sections)
}

func (handler *Handler) createSection(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SectionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ClassID = requestutil.ID(request, "classID")

	s, err := handler.service.CreateSection(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, s)
}

func (handler *Handler) deleteSection(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSection(request.Context(), authz.IdentityFromClaims(claims),
		requestutil.ID(request, "classID"), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listSubjects(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	subjects, err := handler.service.ListSubjects(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "classID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, subjects)
}

func (handler *Handler) createSubject(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SubjectInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ClassID = requestutil.ID(request, "classID")

	s, err := handler.service.CreateSubject(request.Context(), authz.IdentityFromClaims(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, s)
}

func (handler *Handler) deleteSubject(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSubject(request.Context(), authz.IdentityFromClaims(claims),
		requestutil.ID(request, "classID"), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
