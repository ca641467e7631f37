package backend

import (
	"context"
	"errors"
	"fmt"

	"pesa/internal/accounts"
	"pesa/internal/amqp"
	"pesa/internal/core"
	applog "pesa/internal/log"
	"pesa/internal/services"
	"pesa/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}
	cleanups := []CleanupFunc{repo.Close}

	hasher, err := accounts.NewHasher(config.PasswordHash, config.BcryptCost)
	if err != nil {
		repo.Close()
		return nil, err
	}

	days := config.ReminderDays
	if days <= 0 {
		days = services.DefaultReminderDays
	}
	policyName := config.ReminderPolicy
	if policyName == "" {
		policyName = "upcoming"
	}
	policy, err := services.GetReminderPolicy(policyName, days)
	if err != nil {
		repo.Close()
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(f.logger),
		services.WithReminderPolicy(policy),
	}

	// AMQP is optional; a broker that cannot be reached only disables notifications
	amqpEnabled := false
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications", applog.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			opts = append(opts, services.WithNotifier(client))
			cleanups = append(cleanups, client.Close)
			amqpEnabled = true
		}
	}

	store, err := accounts.Open(config.UsersPath, hasher, repo, f.logger)
	if err != nil {
		runCleanups(cleanups)
		return nil, err
	}
	cleanups = append(cleanups, store.Close)

	ledger := services.NewLedgerService(repo, core.DefaultConverter(), opts...)

	f.logger.InfoContext(ctx, "Initialized backend",
		applog.FieldBackend, config.Type,
		"users_path", config.UsersPath,
		"password_hash", config.PasswordHash,
		"amqp_enabled", amqpEnabled)

	return &Result{
		Accounts: store,
		Ledger:   ledger,
		Cleanup:  func() error { return runCleanups(cleanups) },
	}, nil
}

func (f *DefaultFactory) createRepository(config Config) (storage.LedgerRepository, error) {
	switch config.Type {
	case FileBackend:
		repo, err := storage.NewFileRepository(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file repository: %w", err)
		}
		return repo, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// runCleanups releases resources in reverse order of acquisition.
func runCleanups(cleanups []CleanupFunc) error {
	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
