// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Sekola HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/sekola/internal/api"
	"github.com/taibuivan/sekola/internal/authz"
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
	"github.com/taibuivan/sekola/internal/platform/blob"
	"github.com/taibuivan/sekola/internal/platform/config"
	"github.com/taibuivan/sekola/internal/platform/constants"
	"github.com/taibuivan/sekola/internal/platform/migration"
	pgstore "github.com/taibuivan/sekola/internal/platform/postgres"
	redisstore "github.com/taibuivan/sekola/internal/platform/redis"
	"github.com/taibuivan/sekola/internal/platform/sec"
	"github.com/taibuivan/sekola/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Sekola] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Storage Services ────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	blobs, err := blob.NewS3Store(startupCtx, blob.Options{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
		BaseURL:  cfg.PublicAssetBaseURL,
	})
	must(log, err, "initialize object storage")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────

	// Authorization engine. The resolver doubles as the student directory
	// the record services use for tenancy checks.
	resolver := authz.NewPostgresResolver(pool)
	scopes := authz.NewEngine(resolver)

	// Session lifecycle.
	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		auth.NewResetTokenRepository(rdb),
		jwtSvc,
	)
	authHandler := auth.NewHandler(authService)

	// Tenancy and academic structure.
	schoolHandler := school.NewHandler(school.NewService(school.NewPostgresRepository(pool), log))

	// People.
	studentHandler := student.NewHandler(student.NewService(student.NewPostgresRepository(pool), scopes, log))
	teacherHandler := teacher.NewHandler(teacher.NewService(teacher.NewPostgresRepository(pool), scopes, log))
	parentHandler := parent.NewHandler(parent.NewService(parent.NewPostgresRepository(pool), scopes, log))

	// Records.
	feeHandler := fee.NewHandler(fee.NewService(fee.NewPostgresRepository(pool), scopes, resolver, log))
	attendanceHandler := attendance.NewHandler(attendance.NewService(attendance.NewPostgresRepository(pool), scopes, resolver, log))
	examHandler := exam.NewHandler(exam.NewService(exam.NewPostgresRepository(pool), scopes, resolver, log))
	documentHandler := document.NewHandler(document.NewService(document.NewPostgresRepository(pool), blobs, scopes, resolver, log))
	supportHandler := support.NewHandler(support.NewService(support.NewPostgresRepository(pool), scopes, resolver, log))

	// Aggregation.
	reportHandler := report.NewHandler(report.NewService(report.NewPostgresRepository(pool), scopes, log))

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		School:     schoolHandler,
		Student:    studentHandler,
		Teacher:    teacherHandler,
		Parent:     parentHandler,
		Fee:        feeHandler,
		Attendance: attendanceHandler,
		Exam:       examHandler,
		Document:   documentHandler,
		Support:    supportHandler,
		Report:     reportHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
