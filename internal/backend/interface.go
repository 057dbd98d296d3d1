package backend

import (
	"context"

	"enoteca/internal/store"
)

// Backend bundles the ports the draft service and the export worker need.
type Backend interface {
	store.RecordStore
	store.ItemCatalog
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// PingFunc reports whether the backend can serve requests.
type PingFunc func(ctx context.Context) error

// BackendResult contains the backend instance and its lifecycle hooks.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
	Ping    PingFunc
}

// Close runs the cleanup hook, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// Memory backend reads seed_items.txt from here
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
