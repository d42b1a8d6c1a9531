package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/telemetry"
	"go.uber.org/zap"
)

// Bootstrap loads configuration, then builds the logger, tracing and the App.
// The returned shutdown function flushes traces, closes the store and syncs
// the logger; it is safe to call when err is non-nil.
func Bootstrap(ctx context.Context, component string, debug bool) (*App, func(), error) {
	noop := func() {}

	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("failed to load configuration: %w", err)
	}
	debugMode := cfg.DebugMode || debug
	cfg.DebugMode = debugMode

	log, err := logger.New(ServiceName+"-"+component, debugMode)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to initialize logger: %w", err)
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEnabled, ServiceName+"-"+component, cfg.OTELEndpoint)
	if err != nil {
		log.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
	} else if cfg.OTELEnabled {
		log.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	}

	a, err := New(cfg, log)
	if err != nil {
		_ = logger.Sync(log)
		return nil, noop, fmt.Errorf("failed to initialize %s: %w", component, err)
	}

	log.Info("starting",
		zap.String("component", component),
		zap.Bool("debug_mode", debugMode),
		zap.String("session_verification", cfg.SessionVerification),
		zap.String("summary_store", cfg.SummaryStore),
		zap.String("completion_model", cfg.CompletionModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
		if err := a.Close(); err != nil {
			log.Warn("failed_to_close_store", zap.Error(err))
		}
		_ = logger.Sync(log)
	}
	return a, shutdown, nil
}
