// Package cli provides common CLI initialization utilities shared by
// cmd/enoteca and cmd/enoteca-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"enoteca/internal/config"
	applog "enoteca/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs with a context bounded by timeout; done closes once it returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
