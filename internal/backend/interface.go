package backend

import (
	"context"

	"worklog/internal/services"
	"worklog/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired service and how to check and release it.
type BackendResult struct {
	Service *services.WorkLogService
	// Repository is set for the sqlite backend only.
	Repository *storage.SQLiteRepository
	Ready      func(ctx context.Context) error
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend builds the store, its observers and loads persisted
	// state. Extra options are applied to the service, e.g. a cache
	// invalidation notifier.
	CreateBackend(ctx context.Context, config Config, opts ...services.Option) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory specific: optional JSON snapshot to start from.
	SeedFile string

	// SQLite specific
	SQLiteDBPath string

	// Optional change publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
