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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"punchcard/internal/attendance"
	"punchcard/internal/attendance/daylock"
	attendancehandler "punchcard/internal/attendance/handler"
	attendancemetrics "punchcard/internal/attendance/metrics"
	"punchcard/internal/attendance/store"
	"punchcard/internal/audit"
	"punchcard/internal/compliance"
	compliancehandler "punchcard/internal/compliance/handler"
	compliancemetrics "punchcard/internal/compliance/metrics"
	"punchcard/internal/jwtauth"
	"punchcard/internal/platform/config"
	"punchcard/internal/platform/httpserver"
	"punchcard/internal/platform/logger"
	"punchcard/internal/platform/metrics"
	"punchcard/internal/platform/middleware"
	"punchcard/internal/platform/postgres"
	"punchcard/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing services. Both fall back to in-process implementations when
	// unconfigured, which keeps single-node deployments dependency-free.
	events, closeStore, err := buildEventStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	lock, closeLock, err := buildDayLock(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLock()

	dir, err := loadDirectory(cfg.DirectoryFile, log)
	if err != nil {
		return err
	}

	// Audit trail: buffered publisher drained by a single worker.
	inbox := make(chan audit.Event, 256)
	publisher := audit.NewPublisher(inbox)
	worker := audit.NewWorker(audit.NewMemoryStore(), inbox)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	recorder, err := attendance.NewRecorder(events, dir, lock, log,
		attendance.WithMetrics(attendancemetrics.New()),
		attendance.WithAudit(publisher),
	)
	if err != nil {
		return err
	}

	registry := compliance.DefaultRegistry()
	engine, err := compliance.NewEngine(registry, log,
		compliance.WithMetrics(compliancemetrics.New()),
		compliance.WithAudit(publisher),
	)
	if err != nil {
		return err
	}
	complianceSvc, err := compliance.NewService(engine, registry, events)
	if err != nil {
		return err
	}

	jwtService := jwtauth.NewService(cfg.Server.JWTSigningKey, "punchcard", "punchcard-api")
	jwtValidator := jwtauth.NewMiddlewareAdapter(jwtService)

	router := newRouter(log, recorder, complianceSvc, jwtValidator, metrics.New(), cfg.Server.RequestTimeout)

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting punchcard server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	if err := httpserver.Shutdown(srv, cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	// Let the audit worker drain before the stores close.
	select {
	case <-workerDone:
	case <-time.After(cfg.Server.ShutdownTimeout):
	}
	return nil
}

// newRouter assembles the HTTP surface: operational endpoints plus both
// module subtrees, each mounted under its own prefix.
func newRouter(
	log *slog.Logger,
	recorder attendancehandler.Service,
	complianceSvc compliancehandler.Service,
	jwtValidator middleware.JWTValidator,
	httpMetrics *metrics.Metrics,
	timeout time.Duration) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	attendancehandler.New(recorder, log, httpMetrics, jwtValidator, timeout).Register(router)
	compliancehandler.New(complianceSvc, log, httpMetrics, jwtValidator, timeout).Register(router)
	return router
}

// eventStore is what the wiring needs from a store: the recorder's
// surface plus the compliance service's event source.
type eventStore interface {
	attendance.EventStore
	compliance.EventSource
}

func buildEventStore(ctx context.Context, cfg config.Config, log *slog.Logger) (eventStore, func(), error) {
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Warn("postgres not configured, using in-memory event store")
		return store.NewMemory(), func() {}, nil
	}
	log.Info("using postgres event store")
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}

func buildDayLock(ctx context.Context, cfg config.Config, log *slog.Logger) (daylock.DayLock, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("redis not configured, using in-process day lock")
		return daylock.NewMemory(), func() {}, nil
	}
	log.Info("using redis day lock")
	return daylock.NewRedis(client.Client), func() { _ = client.Close() }, nil
}
