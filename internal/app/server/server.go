package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/export"
	"dailysettle/internal/platform/config"
	"dailysettle/internal/platform/db"
	"dailysettle/internal/platform/jobs"
	"dailysettle/internal/platform/logger"
	"dailysettle/internal/platform/metrics"
	"dailysettle/internal/transport/http/api"
	payrollrunhandler "dailysettle/internal/transport/http/handlers/payrollrun"
	settlementhandler "dailysettle/internal/transport/http/handlers/settlement"
	"dailysettle/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Service  *settlement.Service
	Jobs     *jobs.Service
	Metrics  *metrics.Collector
	Location *time.Location
	Router   http.Handler
}

// New wires the application. The database is optional: without it the
// stateless compute endpoints still serve and stored-report routes answer 503.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := settlement.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Metrics: metrics.New(), Location: loc}
	var source settlement.ReportSource
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		app.DB = pool
		source = settlement.NewStore(pool)
	}
	app.Service = settlement.NewService(source, policy, cfg.BatchConcurrency)

	app.Jobs = jobs.New(app.Service, cfg.PayrollRunSchedule, loc)
	app.Jobs.Metrics = app.Metrics
	if cfg.ExportDir != "" {
		exportDir := cfg.ExportDir
		app.Jobs.AfterRun = func(_ context.Context, summary settlement.BatchSummary) error {
			path, err := export.SaveWorkbook(exportDir, summary)
			if err != nil {
				return err
			}
			slog.Info("payroll workbook written", "runId", summary.RunID, "path", path)
			return nil
		}
	}

	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(a.Config.IsProduction()))
	if len(a.Config.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.Config.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
			MaxAge:         300,
		}))
	}
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute))

		settlementhandler.NewHandler(a.Service, a.Metrics, a.Location).RegisterRoutes(r)
		payrollrunhandler.NewHandler(a.Jobs, a.Location).RegisterRoutes(r)
	})

	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Jobs.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("settlement server listening", "addr", cfg.Addr, "env", cfg.Environment, "database", app.DB != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
