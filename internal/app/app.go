package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"distresscli/internal/config"
	"distresscli/internal/distress"
	apperrors "distresscli/internal/errors"
	"distresscli/internal/infrastructure"
	customMiddleware "distresscli/internal/middleware"
	transport "distresscli/internal/transport/http"
	"distresscli/pkg/contracts"
)

// AppName is logged at startup
const AppName = "distress-server"

// Application wires the scoring engine into the HTTP service
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Engine        *distress.Engine
	ErrorHandler  *apperrors.ErrorHandler
	Router        chi.Router
	Server        *http.Server
}

// NewApplication builds the engine, router and server from an initialized
// logger and telemetry providers.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if providers == nil {
		return nil, apperrors.NewConfigError("telemetry providers are required", nil)
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}

	metrics, err := distress.NewMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
		Engine: distress.NewEngine(cal, logger,
			distress.WithConcurrency(cfg.Engine.Concurrency),
			distress.WithMetrics(metrics),
		),
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

// setupRouter applies the middleware chain in order
// RequestID → OTel → Logger → Recoverer → Timeout → RateLimit
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}

	r.Use(customMiddleware.RequestID)
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apperrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.ErrorHandler,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	health := transport.NewHealthHandler(a.Engine.Calendar())
	r.Get("/healthz", health.HealthCheck)

	a.setupAPIRoutes(r)

	if a.OTelProviders.MetricsHandler != nil {
		r.Handle("/metrics", a.OTelProviders.MetricsHandler)
	}

	a.Router = r
	return nil
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	scoring := transport.NewDistressHandler(a.Engine, a.Config.Server.MaxBatchSize, a.Logger, a.ErrorHandler)

	r.Route("/api/"+contracts.APIVersion, func(r chi.Router) {
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes, a.ErrorHandler))
		r.Use(customMiddleware.ContentType(a.ErrorHandler, "application/json"))
		r.Mount("/distress", scoring.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving in the background. A listen failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	cal := a.Engine.Calendar()
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("assessment_date", cal.AssessmentDate().Format("2006-01-02")),
		slog.Int("concurrency", a.Config.Engine.Concurrency),
		slog.Bool("rate_limit", a.Config.Server.RateLimit.Enabled))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until interrupted or the listener fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
