// Package backend assembles the store, event publisher, coordinator and
// query gate from configuration.
package backend

import (
	"fmt"

	"budget/internal/amqp"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/query"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/store/memory"
)

// Result carries the assembled components plus a cleanup function that
// releases everything the factory opened.
type Result struct {
	Store   store.Store
	Service *services.BudgetService
	Gate    *query.Gate
	AMQP    *amqp.Client
	Cleanup func() error
}

func Build(cfg *config.Config, logger *log.Logger) (*Result, error) {
	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		st = sqliteStore
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
	case "memory":
		st = memory.New()
		logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}

	// AMQP is optional: without it mutations still commit, only the audit
	// trail goes dark.
	var (
		amqpClient *amqp.Client
		publisher  services.MutationPublisher
	)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mutation events", "error", err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewBudgetService(st, publisher)

	cleanup := func() error {
		var firstErr error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				firstErr = fmt.Errorf("close amqp: %w", err)
			}
		}
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
		return firstErr
	}

	return &Result{
		Store:   st,
		Service: svc,
		Gate:    query.NewGate(st),
		AMQP:    amqpClient,
		Cleanup: cleanup,
	}, nil
}
