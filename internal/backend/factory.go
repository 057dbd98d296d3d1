package backend

import (
	"context"
	"fmt"

	applog "enoteca/internal/log"
	"enoteca/internal/store/memory"
	"enoteca/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
		Ping:    repo.Ping,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Backend: store}, nil
}
