// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/sekola/internal/core/attendance"
	"github.com/taibuivan/sekola/internal/core/document"
	"github.com/taibuivan/sekola/internal/core/exam"
	"github.com/taibuivan/sekola/internal/core/fee"
	"github.com/taibuivan/sekola/internal/core/parent"
	"github.com/taibuivan/sekola/internal/core/report"
	"github.com/taibuivan/sekola/internal/core/school"
	"github.com/taibuivan/sekola/internal/core/student"
	"github.com/taibuivan/sekola/internal/core/support"
	"github.com/taibuivan/sekola/internal/core/teacher"
	"github.com/taibuivan/sekola/internal/platform/config"
	"github.com/taibuivan/sekola/internal/platform/constants"
	"github.com/taibuivan/sekola/internal/platform/middleware"
	"github.com/taibuivan/sekola/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the session lifecycle (login, refresh, password recovery).
	Auth *auth.Handler

	// School handles tenancy plus the class/section/subject structure.
	School *school.Handler

	// Student manages student records and enrollment.
	Student *student.Handler

	// Teacher manages teacher records and subject assignment.
	Teacher *teacher.Handler

	// Parent manages guardian records and student links.
	Parent *parent.Handler

	// Fee manages billing records and payment reconciliation.
	Fee *fee.Handler

	// Attendance manages daily attendance records.
	Attendance *attendance.Handler

	// Exam manages exam results.
	Exam *exam.Handler

	// Document manages uploaded files and their object storage.
	Document *document.Handler

	// Support manages the help-desk ticket queue.
	Support *support.Handler

	// Report serves the read-only aggregation endpoints.
	Report *report.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/schools", h.School.Routes())
		api.Mount("/classes", h.School.StructureRoutes())
		api.Mount("/students", h.Student.Routes())
		api.Mount("/teachers", h.Teacher.Routes())
		api.Mount("/parents", h.Parent.Routes())
		api.Mount("/fees", h.Fee.Routes())
		api.Mount("/attendance", h.Attendance.Routes())
		api.Mount("/exams", h.Exam.Routes())
		api.Mount("/documents", h.Document.Routes())
		api.Mount("/tickets", h.Support.Routes())
		api.Mount("/reports", h.Report.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
