package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jobboard/internal/platform/config"
	"jobboard/internal/platform/logger"
)

// main loads configuration and hands a signal-aware context to run. Wiring
// lives in run so it can return errors instead of exiting mid-setup.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
