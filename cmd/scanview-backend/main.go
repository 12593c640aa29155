// Command scanview-backend runs the in-process development implementation of
// the diagnostic service so the client can be exercised without the hosted
// backend.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"scanview/internal/backend"
	"scanview/internal/platform/config"
	"scanview/internal/platform/httpserver"
	"scanview/internal/platform/logger"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Request handling lives in internal/backend.
func main() {
	cfg := config.BackendFromEnv()
	log := logger.New(false)

	handler := backend.NewHandler(
		backend.NewInMemoryUserStore(),
		backend.NewInMemoryReportStore(),
		backend.NewTokenService(cfg.JWTSigningKey),
		log,
	)
	srv := httpserver.New(cfg.Addr, backend.NewRouter(handler))

	log.Info("starting scanview backend", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
