package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"petrodash/internal/config"
	"petrodash/internal/dataset"
	apierrors "petrodash/internal/errors"
	"petrodash/internal/exporter"
	"petrodash/internal/infrastructure"
	custommw "petrodash/internal/middleware"
	"petrodash/internal/services"
	handlers "petrodash/internal/transport/http"
	ws "petrodash/internal/websocket"
	"petrodash/pkg/contracts"
)

// BuildTime is set at compile time via -ldflags.
var BuildTime = ""

// Application is the composition root for the dashboard server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	Provider  dataset.TableProvider
	Hub       *ws.Hub
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("sales_file", cfg.GetSalesFile()))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.DefaultOTelConfig(contracts.Version, "production"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var metrics *infrastructure.DashboardMetrics
	if otelProviders.Meter != nil {
		metrics, err = infrastructure.NewDashboardMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	hub := ws.NewHub(logger)

	provider := dataset.NewCachingProvider(
		dataset.NewLoader(logger), cfg.GetSalesFile(), logger)

	dashboard := services.NewDashboardService(
		provider, cfg.GetGeoJSONFile(), cfg.Dashboard, hub, metrics, logger)
	health := services.NewHealthService(
		contracts.Version, BuildTime, provider, hub, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Provider:      provider,
		Hub:           hub,
		Dashboard:     dashboard,
		Health:        health,
	}

	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// buildRouter assembles the middleware chain and mounts the handlers.
func (app *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.StripSlashes)

	if app.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: app.Config.Security.AllowedOrigins,
			Logger:         app.Logger,
		}))
	}
	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger)
		r.Use(limiter.Handler)
	}
	r.Use(custommw.Timeout(app.Config.Server.WriteTimeout, app.Logger))

	errorHandler := apierrors.NewErrorHandler(app.Logger, app.Config.Logging.Development)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	dashboardHandler := handlers.NewDashboardHandler(app.Dashboard, app.Logger, errorHandler)
	chartsHandler := handlers.NewChartsHandler(
		app.Dashboard, exporter.NewChartRenderer(app.Logger), app.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(app.Health, app.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Mount("/charts", chartsHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.With(render.SetContentType(render.ContentTypeJSON)).
			Get("/version", healthHandler.Version)
	})

	if app.OTelProviders != nil && app.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", app.OTelProviders.PrometheusHTTP)
	}

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(app.Hub, app.Logger, w, req)
	})

	return r
}

// Start begins serving. It warms the table cache so the first request does
// not pay the parse cost; a missing spreadsheet only degrades readiness.
func (app *Application) Start() error {
	app.Hub.Start()

	warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := app.Provider.Table(warmCtx); err != nil {
		app.Logger.Warn("sales table not loaded at startup",
			slog.String("source", app.Provider.Source()),
			slog.String("error", err.Error()))
	}

	app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (app *Application) Stop(ctx context.Context) error {
	app.Logger.Info("shutting down")

	app.Hub.Stop()

	if err := app.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if app.OTelProviders != nil {
		if err := app.OTelProviders.Shutdown(ctx); err != nil {
			app.Logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	return nil
}

// Run starts the application and blocks until SIGINT/SIGTERM.
func (app *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		app.Logger.Info("signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(ctx)
}
