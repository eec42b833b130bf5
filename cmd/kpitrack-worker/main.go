package main

import (
	"context"
	"errors"
	"time"

	"kpitrack/internal/amqp"
	"kpitrack/internal/backend"
	"kpitrack/internal/cli"
	applog "kpitrack/internal/log"
	"kpitrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting kpitrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the export target. With "none" the worker only drains the
	// queue so deliveries don't pile up while export is disabled.
	target, err := backend.CreateExportTarget(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize export target", applog.FieldError, err)
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return
	}
	defer amqpClient.Close()

	var syncWorker *worker.SyncWorker
	if target.Writer != nil {
		syncWorker = worker.NewSyncWorker(repo, target.Writer, target.Deleter, cfg.SyncBatchSize)

		// Recover values recorded while the worker was down
		logger.Info("Performing startup sync check...")
		if err := syncWorker.StartupSyncCheck(ctx); err != nil {
			logger.Error("Failed startup sync check", applog.FieldError, err)
			// Don't exit - continue with normal operation
		}
	} else {
		logger.Info("Export disabled - values stay in SQLite only")
	}

	go func() {
		syncHandler := func(msg *amqp.ValueSyncMessage) error {
			if syncWorker == nil {
				return nil
			}
			return syncWorker.HandleSyncMessage(ctx, msg)
		}
		deleteHandler := func(msg *amqp.ValueDeleteMessage) error {
			if syncWorker == nil {
				return nil
			}
			return syncWorker.HandleDeleteMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeMessages(ctx, syncHandler, deleteHandler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
			cancel()
		}
	}()

	// Periodic pending scan catches values whose sync message was lost
	if syncWorker != nil {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := syncWorker.ProcessPendingValues(ctx); err != nil {
						logger.Error("Periodic pending sync failed", applog.FieldError, err)
					}
				}
			}
		}()
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		cancel()
	})

	select {
	case <-ctx.Done():
		// consumer failure; shut down without waiting for a signal
		logger.Info("Worker context cancelled, shutting down")
	case <-shutdownCtx.Done():
		<-done
	}
}
