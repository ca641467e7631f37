package backend

import (
	"context"

	"pesa/internal/accounts"
	"pesa/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds everything a front end needs for one session.
type Result struct {
	Accounts *accounts.Store
	Ledger   *services.LedgerService
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// Create wires storage, accounts and the ledger service for the given config
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Account index and file backend
	DataDirectory string
	UsersPath     string

	// SQLite specific
	SQLiteDBPath string

	// Accounts
	PasswordHash string
	BcryptCost   int

	// Bill reminders
	ReminderPolicy string
	ReminderDays   int

	// Optional change notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of ledger storage
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
