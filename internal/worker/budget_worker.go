// Package worker reacts to ledger change notifications.
package worker

import (
	"context"
	"errors"
	"fmt"

	"pesa/internal/amqp"
	"pesa/internal/core"
	applog "pesa/internal/log"
)

// UserLookup resolves a username to its stored account.
type UserLookup interface {
	User(ctx context.Context, username string) (core.User, error)
}

// BudgetChecker reports spending against budgets for a user.
type BudgetChecker interface {
	CheckBudgets(ctx context.Context, user core.User) ([]core.BudgetStatus, error)
}

// Alert is produced for every handled change.
type Alert struct {
	Change     *amqp.LedgerChangedMessage
	OverBudget []core.BudgetStatus
}

// BudgetWorker re-checks a user's budgets whenever their expenses or budgets
// change and hands the result to a sink.
type BudgetWorker struct {
	users   UserLookup
	budgets BudgetChecker
	sink    func(Alert) error
	logger  *applog.Logger
}

func NewBudgetWorker(users UserLookup, budgets BudgetChecker, sink func(Alert) error, logger *applog.Logger) *BudgetWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &BudgetWorker{
		users:   users,
		budgets: budgets,
		sink:    sink,
		logger:  logger.WithComponent(applog.ComponentBudget),
	}
}

// HandleLedgerChanged processes a single change message from AMQP. Income
// changes never affect budgets and are passed on without a check.
func (w *BudgetWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		applog.FieldUsername, msg.Username,
		applog.FieldKind, msg.Part,
		applog.FieldOperation, msg.Operation,
		applog.FieldRecords, msg.Records)

	alert := Alert{Change: msg}
	if msg.Part != amqp.PartIncome {
		over, err := w.overBudget(ctx, msg.Username)
		if err != nil {
			return err
		}
		alert.OverBudget = over
	}

	if len(alert.OverBudget) > 0 {
		w.logger.WarnContext(ctx, "Budgets exceeded",
			applog.FieldUsername, msg.Username,
			"count", len(alert.OverBudget))
	}
	if w.sink == nil {
		return nil
	}
	return w.sink(alert)
}

func (w *BudgetWorker) overBudget(ctx context.Context, username string) ([]core.BudgetStatus, error) {
	user, err := w.users.User(ctx, username)
	if errors.Is(err, core.ErrInvalidCredentials) {
		return nil, fmt.Errorf("look up user %s: %w: %w", username, amqp.ErrPermanent, err)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user %s: %w", username, err)
	}
	statuses, err := w.budgets.CheckBudgets(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("check budgets: %w", err)
	}

	var over []core.BudgetStatus
	for _, s := range statuses {
		if s.Remaining.IsNegative() {
			over = append(over, s)
		}
	}
	return over, nil
}
