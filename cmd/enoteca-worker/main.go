package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"enoteca/internal/amqp"
	"enoteca/internal/backend"
	"enoteca/internal/cli"
	applog "enoteca/internal/log"
	"enoteca/internal/scheduler"
	"enoteca/internal/sheets"
	gsheet "enoteca/internal/sheets/google"
	"enoteca/internal/sheets/memory"
	"enoteca/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting enoteca-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is private to this process; the worker exports only what it stores itself")
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer res.Close()

	var exporter sheets.RecordExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memory.New()
		logger.Info("Google Sheets disabled, exporting to memory - no GOOGLE_SPREADSHEET_ID provided")
	}

	exports := worker.NewExportWorker(res.Backend, res.Backend, exporter)
	sched := scheduler.New(cfg.ExportSchedule, exports.ExportToday)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled, relying on the scheduled export only")
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeRecordSubmitted(gctx, exports.HandleRecordSubmitted)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
