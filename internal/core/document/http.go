// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/middleware"
	requestutil "github.com/taibuivan/sekola/internal/platform/request"
	"github.com/taibuivan/sekola/internal/platform/respond"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/internal/platform/validate"
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

	router.Get("/", handler.listDocuments)
	router.Get("/{id}", handler.getDocument)

	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher))

		staffRoute.Post("/", handler.upload)
	})

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleSuperAdmin, sec.RoleSchoolAdmin))

		adminRoute.Delete("/{id}", handler.remove)
	})

	return router
}

func (handler *Handler) listDocuments(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	documents, total, err := handler.service.ListDocuments(request.Context(), authz.IdentityFromClaims(claims),
		request.URL.Query().Get("student_id"), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, documents, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getDocument(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	d, err := handler.service.GetDocument(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, d)
}

// upload accepts a multipart form with a "file" part and a "student_id"
// field.
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxUploadSize)
	if err := request.ParseMultipartForm(MaxUploadSize); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "File exceeds the 10 MiB limit"))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "A file part is required"))
		return
	}
	defer file.Close()

	d, err := handler.service.Upload(request.Context(), authz.IdentityFromClaims(claims), UploadInput{
		StudentID: request.FormValue("student_id"),
		FileName:  header.Filename,
		Size:      header.Size,
		Body:      file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, d)
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
