package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"enoteca/internal/amqp"
	"enoteca/internal/backend"
	"enoteca/internal/cache"
	"enoteca/internal/cli"
	"enoteca/internal/core"
	apphttp "enoteca/internal/http"
	applog "enoteca/internal/log"
	"enoteca/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Publishing is optional; drafts are saved locally either way.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", applog.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	drafts := services.NewDraftService(res.Backend, res.Backend, publisher)
	if _, err := drafts.Open(context.Background(), core.Today()); err != nil {
		logger.Warn("Failed to open today's record", applog.FieldError, err)
	}

	janitor := cache.NewJanitor(drafts.Caches()...)
	janitor.Start(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, drafts, apphttp.Options{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Ready:       res.Ping,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		janitor.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting enoteca server", "port", cfg.Port, "backend", cfg.DataBackend, "amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
