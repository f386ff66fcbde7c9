package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/vscan/internal/config"
	"github.com/JonMunkholm/vscan/internal/core"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	defaults, err := core.OptionsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid report defaults", "error", err)
		os.Exit(1)
	}

	limiter := core.NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	service, err := core.NewService(core.SettingsFromConfig(cfg), limiter, slog.Default())
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	slog.Info("service ready",
		"output_dir", service.OutputDir(),
		"run_log", service.RunLogPath(),
		"backends", cfg.Crypto.Backends,
		"max_concurrent_runs", cfg.Upload.MaxConcurrent,
	)
	if cfg.RunLog.RecordPassword {
		slog.Warn("run log records generated passwords in clear text", "path", service.RunLogPath())
	}

	server := web.NewServer(service, cfg, defaults)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight report runs finish writing their artifacts.
		if st := limiter.Status(); st.Active > 0 {
			slog.Info("waiting for report runs to complete", "active", st.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("report runs did not complete in time", "error", err)
			} else {
				slog.Info("all report runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
