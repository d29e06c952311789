// The worker mirrors ledger expense additions into a Google Sheets
// spreadsheet. It shares the sqlite slot store with the API server and
// consumes change messages from the AMQP feed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lastapp/internal/amqp"
	"lastapp/internal/config"
	kvsqlite "lastapp/internal/kv/sqlite"
	applog "lastapp/internal/log"
	"lastapp/internal/sheets"
	"lastapp/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.ParseLevel(cfg.LogLevel), applog.ComponentWorker)
	applog.SetDefault(logger)

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Fatal error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the sync worker")
	}
	if cfg.Backend != "sqlite" {
		return errors.New("the sync worker needs the sqlite backend shared with the server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := kvsqlite.Open(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer broker.Close()

	exporter, err := sheets.NewFromEnv(ctx)
	if err != nil {
		return err
	}

	logger.Info("Starting sync worker",
		"db_path", cfg.SQLiteDBPath,
		"queue", cfg.AMQPQueue,
		"spreadsheet", cfg.GoogleSpreadsheetID)

	return worker.NewSyncWorker(store, exporter).Run(ctx, broker)
}
