// Package main is the entry point for the showalert outbox worker. It relays
// show events recorded by the API server to RabbitMQ.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"showalert/internal/config"
	"showalert/internal/infrastructure/messaging"
	"showalert/internal/infrastructure/storage/postgres"
	"showalert/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting showalert outbox worker")

	dbCfg := cfg.Database
	dbCfg.MaxConns, dbCfg.MinConns = 5, 1
	pool, err := postgres.NewPool(ctx, postgres.NewPoolConfig("showalert-worker", dbCfg))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	publisher, err := messaging.Dial(cfg.RabbitMQ, log)
	if err != nil {
		log.Fatalw("failed to connect to rabbitmq", "error", err)
	}
	defer publisher.Close()

	relay := postgres.NewOutboxRelay(postgres.NewTxManager(pool), postgres.RelayConfig{
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetries,
		RetryBase:  cfg.Outbox.RetryBase,
	}, publisher, log)

	w := NewWorker(relay, pool.Stats, cfg.Outbox.PollInterval, log)
	w.Run(ctx)

	log.Info("worker stopped")
}
