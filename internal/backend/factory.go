package backend

import (
	"context"
	"fmt"

	"worklog/internal/amqp"
	"worklog/internal/log"
	"worklog/internal/services"
	"worklog/internal/storage"
	"worklog/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, opts ...services.Option) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, opts)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config, opts)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, opts []services.Option) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	opts = append([]services.Option{
		services.WithPersistence(repo),
		services.WithCloser("sqlite", repo),
	}, opts...)
	opts = append(opts, f.amqpOptions(config)...)

	svc := services.NewWorkLogService(memory.New(), f.logger, opts...)
	if err := svc.Bootstrap(ctx, repo, true); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("load work log from SQLite: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", config.AMQPURL != "")

	return &BackendResult{
		Service:    svc,
		Repository: repo,
		Ready:      repo.Ping,
		Cleanup:    svc.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config, opts []services.Option) (*BackendResult, error) {
	st := memory.NewSeeded()
	if config.SeedFile != "" {
		var err error
		st, err = memory.NewFromFile(config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
	}

	opts = append(opts, f.amqpOptions(config)...)
	svc := services.NewWorkLogService(st, f.logger, opts...)

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seed_file", config.SeedFile,
		"jobs", len(st.Jobs()))

	return &BackendResult{
		Service: svc,
		Ready:   func(context.Context) error { return nil },
		Cleanup: svc.Close,
	}, nil
}

// amqpOptions connects the change publisher. A broker that cannot be
// reached only disables publishing.
func (f *DefaultFactory) amqpOptions(config Config) []services.Option {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change publishing", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return []services.Option{
		services.WithNotifier("amqp", client),
		services.WithCloser("amqp", client),
	}
}
