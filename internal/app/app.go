package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/database"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/handlers"
	"github.com/benvon/board-insights/internal/middleware"
	"github.com/benvon/board-insights/internal/services/ai"
	"github.com/benvon/board-insights/internal/services/session"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// ServiceName identifies the process in traces and logs
const ServiceName = "board-insights"

// App holds the handlers and the clients they share for the life of the process
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Compress *handlers.CompressHandler
	Analysis *handlers.AnalysisHandler
	Health   *handlers.HealthChecker

	Sessions   *session.Service
	Store      database.Store
	Completion *ai.OpenAIProvider

	closeStore func() error
}

// New builds every client once. A handler whose secrets are missing is built
// in its misconfigured form and answers with a configuration error.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		Config:     cfg,
		Logger:     log,
		Health:     handlers.NewHealthChecker(),
		closeStore: func() error { return nil },
	}

	if cfg.RequireAnalysis() == nil {
		a.Completion = ai.NewOpenAIProvider(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel, log, cfg.DebugMode)
		a.Health.AddCheck("completion", a.Completion.Ping)
	}

	if err := cfg.RequireCompression(); err == nil {
		store, closeStore, err := database.OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.closeStore = closeStore
		a.Sessions = session.NewFromConfig(cfg, log)
		a.Health.AddCheck("store", store.Ping)
		a.Health.AddCheck("auth", a.Sessions.Health)
	} else {
		log.Warn("compression_disabled", zap.Error(err))
	}

	// Typed nils would hide a missing dependency from the handler
	var (
		sessions session.Establisher
		store    database.SummaryStore
		llm      ai.CompletionService
	)
	if a.Sessions != nil {
		sessions = a.Sessions
	}
	if a.Store != nil {
		store = a.Store
	}
	if a.Completion != nil {
		llm = a.Completion
	}

	a.Compress = handlers.NewCompressHandler(cfg, sessions, store, llm, log)
	a.Analysis = handlers.NewAnalysisHandler(cfg, llm, log)
	return a, nil
}

// Close releases the store's connection pool
func (a *App) Close() error {
	return a.closeStore()
}

// Check probes every configured upstream and joins the failures
func (a *App) Check(ctx context.Context) error {
	var errs []error
	if err := a.Config.RequireCompression(); err != nil {
		errs = append(errs, err)
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Ping(ctx))
	}
	if a.Sessions != nil {
		errs = append(errs, a.Sessions.Health(ctx))
	}
	if a.Completion != nil {
		errs = append(errs, a.Completion.Ping(ctx))
	}
	return errors.Join(errs...)
}

// Router serves both handlers over HTTP with the same envelope the gateway uses
func (a *App) Router(tracing bool) http.Handler {
	r := mux.NewRouter()

	// Middleware registered first wraps outermost
	if tracing {
		r.Use(otelmux.Middleware(ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging(a.Logger))
	r.Use(middleware.Audit(a.Logger))
	r.Use(middleware.Recovery(a.Logger))
	r.Use(middleware.SecurityHeaders(a.Config.EnableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(a.Config.CompressionTimeout + a.Config.AnalysisTimeout))

	r.Handle("/compress", gateway.HTTPHandler(a.Compress, a.Logger)).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/analysis", gateway.HTTPHandler(a.Analysis, a.Logger)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", a.Health.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
