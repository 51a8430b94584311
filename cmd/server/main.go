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
	chimw "github.com/go-chi/chi/v5/middleware"

	"opshub/internal/db"
	"opshub/internal/domain/attendance"
	"opshub/internal/domain/audit"
	"opshub/internal/domain/auth"
	"opshub/internal/domain/employees"
	"opshub/internal/domain/kra"
	"opshub/internal/domain/leave"
	"opshub/internal/domain/metrics"
	"opshub/internal/domain/notifications"
	"opshub/internal/domain/payroll"
	"opshub/internal/domain/tasks"
	"opshub/internal/platform/config"
	cryptoutil "opshub/internal/platform/crypto"
	"opshub/internal/platform/email"
	attendancehandler "opshub/internal/transport/http/handlers/attendance"
	audithandler "opshub/internal/transport/http/handlers/audit"
	authhandler "opshub/internal/transport/http/handlers/auth"
	employeeshandler "opshub/internal/transport/http/handlers/employees"
	krahandler "opshub/internal/transport/http/handlers/kra"
	leavehandler "opshub/internal/transport/http/handlers/leave"
	metricshandler "opshub/internal/transport/http/handlers/metrics"
	notificationshandler "opshub/internal/transport/http/handlers/notifications"
	payrollhandler "opshub/internal/transport/http/handlers/payroll"
	taskshandler "opshub/internal/transport/http/handlers/tasks"
	"opshub/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "development" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	keeper, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("invalid data encryption key", "err", err)
		os.Exit(1)
	}

	authStore := auth.NewStore(pool)
	resolver := auth.NewResolver(cfg.JWTSecret, authStore)

	mailer := email.New(cfg)
	notifier := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom, cfg.EmailEnabled)
	auditor := audit.New(pool)

	employeeSvc := employees.NewService(employees.NewStore(pool))
	taskSvc := tasks.NewService(tasks.NewStore(pool))
	attendanceStore := attendance.NewStore(pool)
	leaveSvc := leave.NewService(leave.NewStore(pool))
	metricSvc := metrics.NewService(metrics.NewStore(pool), cfg.TaskRiskWindow)
	kraSvc := kra.NewService(kra.NewStore(pool))
	payrollSvc := payroll.NewService(payroll.NewStore(pool), keeper)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Authenticate(resolver))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			authhandler.NewHandler(authStore, cfg.JWTSecret, keeper, cfg.SessionTTL).RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			employeeshandler.NewHandler(employeeSvc, auditor).RegisterRoutes(r)
			taskshandler.NewHandler(taskSvc, notifier).RegisterRoutes(r)
			attendancehandler.NewHandler(attendanceStore).RegisterRoutes(r)
			leavehandler.NewHandler(leaveSvc, notifier).RegisterRoutes(r)
			metricshandler.NewHandler(metricSvc, notifier).RegisterRoutes(r)
			krahandler.NewHandler(kraSvc, notifier).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollSvc, notifier).RegisterRoutes(r)
			notificationshandler.NewHandler(notifier).RegisterRoutes(r)
			audithandler.NewHandler(auditor).RegisterRoutes(r)
		})
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}
}
