package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pesa/internal/core"
	applog "pesa/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores all ledgers in one database, keyed by username.
// Per-user file locations are not used.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; the ledger is rewritten inside a single transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Init is a no-op: an absent user simply has no rows.
func (r *SQLiteRepository) Init(context.Context, core.User) error {
	return nil
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context, user core.User, kind core.Kind) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, category, amount, original_amount, notes
		   FROM transactions
		  WHERE username = ? AND kind = ?
		  ORDER BY position`,
		user.Username, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", core.ErrPersistence, kind.Plural(), err)
	}
	defer rows.Close()

	records := []core.Transaction{}
	for rows.Next() {
		var (
			t      core.Transaction
			amount string
		)
		if err := rows.Scan(&t.Date, &t.Category, &amount, &t.OriginalAmount, &t.Notes); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", core.ErrPersistence, kind.Plural(), err)
		}
		if t.AmountBase, err = core.ParseDecimal(amount); err != nil {
			slog.WarnContext(ctx, "Skipped row with unreadable amount",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldUsername, user.Username,
				applog.FieldKind, kind,
				"amount", amount)
			continue
		}
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", core.ErrPersistence, kind.Plural(), err)
	}
	return records, nil
}

func (r *SQLiteRepository) SaveTransactions(ctx context.Context, user core.User, kind core.Kind, records []core.Transaction) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE username = ? AND kind = ?`,
			user.Username, string(kind)); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (username, kind, position, date, category, amount, original_amount, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, t := range records {
			if _, err := stmt.ExecContext(ctx,
				user.Username, string(kind), i,
				t.Date, t.Category, t.AmountBase.String(), t.OriginalAmount, t.Notes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", core.ErrPersistence, kind.Plural(), err)
	}

	slog.DebugContext(ctx, "Saved transactions to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldUsername, user.Username,
		applog.FieldKind, kind,
		applog.FieldRecords, len(records))
	return nil
}

func (r *SQLiteRepository) LoadBudgets(ctx context.Context, user core.User) (core.Budgets, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, limit_amount FROM budgets WHERE username = ? ORDER BY position`,
		user.Username)
	if err != nil {
		return core.Budgets{}, fmt.Errorf("%w: query budgets: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var budgets core.Budgets
	for rows.Next() {
		var category, limit string
		if err := rows.Scan(&category, &limit); err != nil {
			return core.Budgets{}, fmt.Errorf("%w: scan budgets: %v", core.ErrPersistence, err)
		}
		d, err := core.ParseDecimal(limit)
		if err != nil {
			slog.WarnContext(ctx, "Skipped budget with unreadable limit",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldUsername, user.Username,
				applog.FieldCategory, category)
			continue
		}
		budgets.Set(category, d)
	}
	if err := rows.Err(); err != nil {
		return core.Budgets{}, fmt.Errorf("%w: iterate budgets: %v", core.ErrPersistence, err)
	}
	return budgets, nil
}

func (r *SQLiteRepository) SaveBudgets(ctx context.Context, user core.User, budgets core.Budgets) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE username = ?`, user.Username); err != nil {
			return err
		}
		for i, e := range budgets.Entries() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO budgets (username, position, category, limit_amount) VALUES (?, ?, ?, ?)`,
				user.Username, i, e.Category, e.Limit.String()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save budgets: %v", core.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
