// Package backend constructs the configured tablestore implementation.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"balcao/internal/tablestore"
	"balcao/internal/tablestore/google"
	"balcao/internal/tablestore/memory"
	"balcao/internal/tablestore/sqlite"
)

// Type selects the store implementation.
type Type string

const (
	Sheets Type = "sheets"
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Sheets, SQLite, Memory:
		return true
	}
	return false
}

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// Result carries the constructed store and its optional cleanup.
type Result struct {
	Store   tablestore.Store
	Cleanup CleanupFunc
}

// Config holds backend construction parameters.
type Config struct {
	Type       Type
	SQLitePath string
}

// Factory creates tablestores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case Sheets:
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets store: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend")
		return &Result{Store: cli}, nil

	case SQLite:
		st, err := sqlite.Open(config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized sqlite backend", "db_path", config.SQLitePath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case Memory:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
