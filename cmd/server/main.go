package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slavik-pastushenko/blockchain-go/ledger"
	"github.com/slavik-pastushenko/blockchain-go/service/config"
	"github.com/slavik-pastushenko/blockchain-go/service/metrics"
	"github.com/slavik-pastushenko/blockchain-go/service/server"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	// Initialize Prometheus metrics
	m := metrics.NewMetrics(nil)

	// Initialize the chain. Mining the genesis block is synchronous and
	// can take a while at high difficulties.
	logger.Info("mining genesis block",
		"difficulty", cfg.Difficulty,
		"reward", cfg.Reward,
		"fee", cfg.Fee,
	)
	start := time.Now()
	chain := ledger.New(cfg.Difficulty, cfg.Reward, cfg.Fee)
	logger.Info("genesis block mined",
		"duration", time.Since(start).String(),
		"address", chain.Address,
	)
	m.RecordBlockMined(time.Since(start).Seconds())

	// Wrap the chain so handlers share one lock
	led := server.NewLedger(chain)

	// Initialize HTTP server
	httpServer := server.New(cfg.ServerAddr, cfg, led, m, logger)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
