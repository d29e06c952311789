package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lastapp/internal/amqp"
	"lastapp/internal/config"
	apphttp "lastapp/internal/http"
	"lastapp/internal/kv"
	kvmem "lastapp/internal/kv/memory"
	kvsqlite "lastapp/internal/kv/sqlite"
	"lastapp/internal/ledger"
	applog "lastapp/internal/log"
	"lastapp/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.ParseLevel(cfg.LogLevel), applog.ComponentApp)
	applog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Fatal error", applog.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store kv.Store
	switch cfg.Backend {
	case "sqlite":
		s, err := kvsqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		store = s
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
	default:
		store = kvmem.New()
		logger.Info("Initialized memory backend")
	}

	led := ledger.New(store)
	led.Load(ctx)

	// The change feed is optional: without a broker the app still works,
	// only the spreadsheet mirror goes dark.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change feed",
				applog.FieldError, err.Error())
		} else {
			publisher = client
			logger.Info("Initialized AMQP change feed",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(led, publisher)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Shutdown cleanup failed", applog.FieldError, err.Error())
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB
	// No WriteTimeout: /api/events holds its connection open.

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}
