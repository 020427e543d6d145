package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"msacli/internal/config"
	apierrors "msacli/internal/errors"
	"msacli/internal/exporter"
	"msacli/internal/files"
	"msacli/internal/infrastructure"
	custommw "msacli/internal/middleware"
	"msacli/internal/operations"
	"msacli/internal/services"
	"msacli/internal/store"
	handlers "msacli/internal/transport/http"
	ws "msacli/internal/websocket"
	"msacli/pkg/contracts"
)

// Application is the composed server: configuration, services and the
// HTTP router, ready to Run.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger
	Router *chi.Mux
	Server *http.Server

	Hub           *ws.Hub
	History       *store.HistoryStore
	OTelProviders *infrastructure.OTelProviders

	SettingsService *services.SettingsService
	AnalysisService *services.AnalysisService
	DataService     *services.DataService
	HealthService   *services.HealthService

	upgrader websocket.Upgrader
}

// NewApplication loads configuration from the environment and builds
// the application rooted at the executable directory.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	return NewApplicationAt(cfg, paths, logger, nil)
}

// NewApplicationAt builds the application against an explicit
// workspace. Tests use it to point the server at a temp directory and
// disable the telemetry exporters.
func NewApplicationAt(cfg *config.Config, paths *config.Paths, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", contracts.Version),
		slog.String("workspace", paths.ExecutableDir),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	history, err := store.Open(paths.HistoryDB, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		History:       history,
		OTelProviders: providers,
		Hub:           ws.NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, cfg.Security.AllowedOrigins)
			},
		},
	}

	if err := app.buildServices(); err != nil {
		history.Close()
		return nil, err
	}
	app.buildRouter()

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

func (app *Application) buildServices() error {
	discovery := files.NewDiscovery(app.Paths)
	manager := files.NewManager(app.Paths)

	app.SettingsService = services.NewSettingsService(app.Paths.SettingsFile, app.Logger)
	app.SettingsService.SetBroadcaster(app.Hub)

	steps := []operations.Step{
		operations.NewScanStage(discovery),
		operations.NewParseStage(app.Logger),
		operations.NewAnalyzeStage(app.SettingsService, app.Logger),
		operations.NewExportStage(
			exporter.NewExcelExporter(app.Logger),
			exporter.NewCSVWriter(app.Paths),
			app.Paths,
		),
	}

	opts := []operations.Option{
		operations.WithBroadcaster(app.Hub),
		operations.WithRunTimeout(app.Config.Analysis.OperationTimeout),
	}
	if app.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateAnalysisMetrics(app.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create analysis metrics: %w", err)
		}
		opts = append(opts, operations.WithMetrics(metrics))
	}
	runManager := operations.NewManager(steps, app.Logger, opts...)

	app.AnalysisService = services.NewAnalysisService(
		runManager,
		app.History,
		app.Config.Analysis.MaxConcurrent,
		app.Config.Analysis.HistoryLimit,
		app.Logger,
	)

	app.DataService = services.NewDataService(discovery, manager, app.Logger)
	app.DataService.SetBroadcaster(app.Hub)

	app.HealthService = services.NewHealthService(
		app.Paths,
		app.SettingsService,
		app.AnalysisService,
		contracts.Version,
		app.Logger,
	)
	app.HealthService.SetHub(app.Hub)

	return nil
}

func (app *Application) buildRouter() {
	errHandler := apierrors.NewErrorHandler(app.Logger, app.Config.Logging.Development)

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)

	if app.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: app.Config.Security.AllowedOrigins,
		}))
	}
	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	// The websocket upgrade needs the raw connection, so it stays
	// outside the instrumented API group.
	r.Get("/ws", app.handleWebSocket)

	if app.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", app.OTelProviders.PrometheusHTTP)
	}

	analysisHandler := handlers.NewAnalysisHandler(app.AnalysisService, errHandler, app.Logger)
	settingsHandler := handlers.NewSettingsHandler(app.SettingsService, errHandler, app.Logger)
	dataHandler := handlers.NewDataHandler(app.DataService, errHandler, app.Logger)
	healthHandler := handlers.NewHealthHandler(app.HealthService, app.Logger)

	r.Route("/api", func(r chi.Router) {
		if otelmw, err := custommw.NewOTelMiddleware(app.OTelProviders); err == nil {
			r.Use(otelmw.Handler)
		} else {
			app.Logger.Warn("telemetry middleware disabled",
				slog.String("error", err.Error()))
		}

		r.Get("/health", healthHandler.HealthCheck)
		r.Mount("/analysis", analysisHandler.Routes())
		r.Mount("/settings", settingsHandler.Routes())
		r.Mount("/files", dataHandler.Routes())
	})

	app.Router = r
}

func (app *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := app.upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}
	ws.ServeWS(app.Hub, conn)
}

// Run starts the hub and the HTTP server and blocks until the context
// is cancelled or a shutdown signal arrives.
func (app *Application) Run(ctx context.Context) error {
	app.Hub.Start()

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		app.shutdown(context.Background())
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-sigCh:
		app.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		app.Logger.Info("context cancelled, shutting down")
	}

	return app.shutdown(context.Background())
}

func (app *Application) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, app.Config.Server.ShutdownTimeout)
	defer cancel()

	app.Logger.Info("shutting down")

	var firstErr error
	if err := app.Server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}

	app.Hub.Stop()

	if err := app.History.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("history store close: %w", err)
	}
	if err := app.OTelProviders.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("telemetry shutdown: %w", err)
	}

	app.Logger.Info("shutdown complete")
	return firstErr
}

// checkOrigin accepts same-host connections plus any configured
// origin. Requests without an Origin header (CLI tools) pass.
func checkOrigin(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}
