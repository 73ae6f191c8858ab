package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/app"
	"github.com/marcosgv/tribalbot/internal/config"
	"github.com/marcosgv/tribalbot/internal/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Tribal conquest bot starting...",
		zap.String("world", cfg.World.BaseURL),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	// Runtime lifecycle context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.Bot.Start(ctx); err != nil {
		logger.Error("Failed to connect to Discord", zap.Error(err))
		os.Exit(1)
	}

	// Background loops: hourly village sampling and, if it was enabled before
	// the restart, the conquest monitor.
	container.Sampler.Start(ctx)
	if err := container.Notifier.Start(ctx); err != nil {
		logger.Error("Failed to resume conquest monitor", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Bot started, waiting for signals...")
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown: stop producers before the transport
	logger.Info("Shutting down gracefully...")
	container.Notifier.Stop()
	container.Sampler.Stop()
	cancel()

	if err := container.Bot.Shutdown(); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
