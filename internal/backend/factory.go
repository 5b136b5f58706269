// Package backend assembles a ledger store from configuration: the in-memory
// store for single-process use, or the SQLite store with an optional AMQP
// change bus shared by the household.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"registro/internal/amqp"
	"registro/internal/store/memory"
	"registro/internal/store/sqlite"
)

// Factory creates store backends based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the configured backend.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLite(ctx, config)
	case MemoryBackend:
		return f.createMemory(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	// The change bus is optional: without it the store still works, but
	// writes from other clients only become visible on restart.
	var bus *amqp.Client
	if config.AMQPURL != "" {
		var err error
		bus, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP change bus, continuing without propagation", "error", err)
			bus = nil
		} else {
			f.logger.Info("Initialized AMQP change bus",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	st, err := sqlite.New(config.SQLiteDBPath, config.Collection, bus)
	if err != nil {
		if bus != nil {
			bus.Close()
		}
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"collection", config.Collection,
		"amqp_enabled", bus != nil)

	result := &Result{
		Store: st,
		Cleanup: func() error {
			err := st.Close()
			if bus != nil {
				if busErr := bus.Close(); err == nil {
					err = busErr
				}
			}
			return err
		},
	}
	if bus != nil {
		result.Listen = st.ListenChanges
	}
	return result, nil
}

func (f *Factory) createMemory(config Config) (*Result, error) {
	st := memory.New(config.Collection)

	f.logger.Info("Initialized memory backend", "collection", config.Collection)

	return &Result{Store: st}, nil
}
