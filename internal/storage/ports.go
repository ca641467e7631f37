// Package storage persists ledgers. Every save rewrites the whole part of the
// ledger it covers; there is no incremental append.
package storage

import (
	"context"

	"pesa/internal/core"
)

// LedgerRepository loads and saves the parts of a user's ledger.
//
// Loads degrade missing or malformed data to an empty collection instead of
// failing. Saves report failures wrapped in core.ErrPersistence and leave the
// previously stored version intact.
type LedgerRepository interface {
	// Init creates empty storage for user. It is idempotent.
	Init(ctx context.Context, user core.User) error
	LoadTransactions(ctx context.Context, user core.User, kind core.Kind) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, user core.User, kind core.Kind, records []core.Transaction) error
	LoadBudgets(ctx context.Context, user core.User) (core.Budgets, error)
	SaveBudgets(ctx context.Context, user core.User, budgets core.Budgets) error
	Close() error
}
