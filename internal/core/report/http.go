// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sekola/internal/authz"
	"github.com/taibuivan/sekola/internal/platform/middleware"
	requestutil "github.com/taibuivan/sekola/internal/platform/request"
	"github.com/taibuivan/sekola/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes exposes the report surface. Every role may read reports; the scope
// engine bounds what each viewer's aggregates cover.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/attendance", handler.attendance)
	router.Get("/fees", handler.fees)
	router.Get("/exams", handler.exams)
	router.Get("/students/{id}", handler.student)

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

func (handler *Handler) attendance(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := AttendanceFilter{
		StudentID: request.URL.Query().Get("student_id"),
		ClassID:   request.URL.Query().Get("class_id"),
		From:      queryDate(request, "from"),
		To:        queryDate(request, "to"),
	}

	summary, err := handler.service.Attendance(request.Context(), authz.IdentityFromClaims(claims), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

func (handler *Handler) fees(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := FeeFilter{StudentID: request.URL.Query().Get("student_id")}

	summary, err := handler.service.Fees(request.Context(), authz.IdentityFromClaims(claims), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

func (handler *Handler) exams(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := ExamFilter{
		StudentID: request.URL.Query().Get("student_id"),
		SubjectID: request.URL.Query().Get("subject_id"),
		ExamName:  request.URL.Query().Get("exam_name"),
	}

	summary, err := handler.service.Exams(request.Context(), authz.IdentityFromClaims(claims), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

func (handler *Handler) student(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.Student(request.Context(), authz.IdentityFromClaims(claims), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}
