package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/board-insights/internal/app"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	a, shutdown, err := app.Bootstrap(context.Background(), "server", *debugFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown()

	srv := &http.Server{
		Addr:              ":" + a.Config.ServerPort,
		Handler:           a.Router(a.Config.OTELEnabled),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Compression calls may run for the full COMPRESSION_TIMEOUT
		WriteTimeout:   a.Config.CompressionTimeout + 30*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		a.Logger.Info("server_starting", zap.String("port", a.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Logger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	a.Logger.Info("server_exited")
}
