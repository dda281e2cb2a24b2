package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Evgen-Mutagen/paymentref/internal/controller"
	"github.com/Evgen-Mutagen/paymentref/internal/core"
	"github.com/Evgen-Mutagen/paymentref/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/paymentref/internal/repository"
	"github.com/Evgen-Mutagen/paymentref/internal/service"
	"github.com/Evgen-Mutagen/paymentref/internal/util/metrics"
	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	cfg              *Config
	Router           *chi.Mux
	db               *repository.Database
	registry         *prometheus.Registry
	Logger           *zap.Logger
	Server           *http.Server
	ReferenceService core.ReferenceService
}

func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*App, error) {
	app := &App{
		cfg:      cfg,
		Router:   chi.NewRouter(),
		registry: prometheus.NewRegistry(),
		Logger:   logger,
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	statsRepo, err := app.initStats(ctx)
	if err != nil {
		return nil, err
	}

	app.ReferenceService = service.NewReferenceService(statsRepo, metrics.New(app.registry), logger)

	validate := validator.New()
	if err := paymentref.RegisterValidation(validate); err != nil {
		return nil, fmt.Errorf("failed to register validation: %w", err)
	}

	app.initRouter(validate)
	return app, nil
}

func (a *App) initStats(ctx context.Context) (repository.StatsRepository, error) {
	if a.cfg.DatabaseURI == "" {
		a.Logger.Info("No database configured, keeping stats in memory")
		return repository.NewMemoryStatsRepository(), nil
	}

	db, err := repository.NewDatabase(ctx, repository.DatabaseConfig{
		DSN:            a.cfg.DatabaseURI,
		MigrationsPath: a.cfg.MigrationsPath,
	})
	if err != nil {
		a.Logger.Error("Database initialization failed",
			zap.String("dsn", a.cfg.MaskDBPassword()),
			zap.Error(err))
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}

	a.db = db
	a.Logger.Info("Database initialized successfully",
		zap.String("migrations_path", a.cfg.MigrationsPath))

	return repository.NewStatsRepository(db), nil
}

func (a *App) initRouter(validate *validator.Validate) {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(middleware.Logger)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.Compress(5))
	a.Router.Use(middleware.Heartbeat("/ping"))

	referenceController := controller.NewReferenceController(a.ReferenceService, validate, a.Logger)

	a.Router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.Router.Route("/api/references", func(r chi.Router) {
		r.Post("/validate", referenceController.Validate)
		r.Post("/check", referenceController.Check)
		r.Post("/batch", referenceController.Batch)

		if a.cfg.JWTSecretKey == "" {
			a.Logger.Warn("No JWT secret configured, stats endpoint disabled")
			return
		}

		tokens := service.NewTokenValidator(a.cfg.JWTSecretKey)
		r.With(middlewareinternal.JWTAuthMiddleware(tokens, a.Logger)).
			Get("/stats", referenceController.Stats)
	})
}

// Run serves HTTP and flushes stats until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Server = &http.Server{
		Addr:              a.cfg.RunAddress,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		StartStatsFlusher(ctx, a.ReferenceService, a.cfg.FlushInterval, a.Logger)
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server",
			zap.String("address", a.cfg.RunAddress))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	a.Logger.Info("Shutting down server...")
	if err := a.shutdown(); err != nil {
		a.Logger.Error("Server shutdown error", zap.Error(err))
	}

	cancel()
	<-flusherDone

	if err := a.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close database: %w", err)
	}
	return runErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// StartStatsFlusher writes pending stats every interval and once more when
// ctx is done.
func StartStatsFlusher(ctx context.Context, svc core.ReferenceService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := svc.FlushStats(flushCtx); err != nil {
				logger.Error("Final stats flush failed", zap.Error(err))
			}
			cancel()
			logger.Info("Stats flushing stopped")
			return
		case <-ticker.C:
			if err := svc.FlushStats(ctx); err != nil {
				logger.Error("Stats flush failed", zap.Error(err))
			}
		}
	}
}
