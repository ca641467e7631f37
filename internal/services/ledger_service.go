package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pesa/internal/amqp"
	"pesa/internal/core"
	applog "pesa/internal/log"
	"pesa/internal/storage"
)

// Notifier publishes ledger change notifications.
type Notifier interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService is the single entry point for front ends. Each call loads the
// ledger fresh, applies one change, writes the changed part back in full and
// returns the new snapshot. Calls for the same user never interleave.
type LedgerService struct {
	repo         storage.LedgerRepository
	transactions *TransactionService
	budgets      *BudgetService
	reminders    ReminderPolicy
	notifier     Notifier
	logger       *applog.Logger
	now          func() time.Time

	locks sync.Map // username -> *sync.Mutex
}

type Option func(*LedgerService)

// WithNotifier publishes a change message after every successful save.
func WithNotifier(n Notifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithReminderPolicy(p ReminderPolicy) Option {
	return func(s *LedgerService) { s.reminders = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

func NewLedgerService(repo storage.LedgerRepository, converter *core.Converter, opts ...Option) *LedgerService {
	s := &LedgerService{
		repo:      repo,
		budgets:   NewBudgetService(),
		reminders: UpcomingWindow{Days: DefaultReminderDays},
		logger:    applog.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentLedger)
	s.transactions = NewTransactionService(converter, s.now)
	return s
}

func (s *LedgerService) lock(username string) func() {
	v, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Load returns the user's current ledger.
func (s *LedgerService) Load(ctx context.Context, user core.User) (core.Ledger, error) {
	defer s.lock(user.Username)()
	return s.load(ctx, user)
}

func (s *LedgerService) load(ctx context.Context, user core.User) (core.Ledger, error) {
	var l core.Ledger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		l.Expenses, err = s.repo.LoadTransactions(gctx, user, core.Expense)
		return err
	})
	g.Go(func() (err error) {
		l.Income, err = s.repo.LoadTransactions(gctx, user, core.Income)
		return err
	})
	g.Go(func() (err error) {
		l.Budgets, err = s.repo.LoadBudgets(gctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.LogError(ctx, "Failed to load ledger", err, applog.OpLoad, applog.NewFields().WithUser(user.Username))
		return core.Ledger{}, err
	}
	return l, nil
}

// AddTransaction records a new expense or income entry.
func (s *LedgerService) AddTransaction(ctx context.Context, user core.User, kind core.Kind, in TransactionInput) (core.Transaction, core.Ledger, error) {
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	list := listOf(&l, kind)
	t, err := s.transactions.Add(list, in)
	if err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	if err := s.saveTransactions(ctx, user, kind, *list, applog.OpCreate); err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	s.logger.InfoContext(ctx, "Transaction added",
		applog.FieldUsername, user.Username,
		applog.FieldKind, kind,
		applog.FieldCategory, t.Category,
		applog.FieldAmount, t.AmountBase.String())
	return t, l, nil
}

// UpdateTransaction edits the entry at the 0-based index.
func (s *LedgerService) UpdateTransaction(ctx context.Context, user core.User, kind core.Kind, index int, in TransactionInput) (core.Ledger, error) {
	if err := kind.Validate(); err != nil {
		return core.Ledger{}, err
	}
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return core.Ledger{}, err
	}
	list := listOf(&l, kind)
	if err := s.transactions.Update(list, index, in); err != nil {
		return core.Ledger{}, err
	}
	if err := s.saveTransactions(ctx, user, kind, *list, applog.OpUpdate); err != nil {
		return core.Ledger{}, err
	}
	return l, nil
}

// DeleteTransaction removes the entry at the 0-based index once confirmed.
func (s *LedgerService) DeleteTransaction(ctx context.Context, user core.User, kind core.Kind, index int, confirmed bool) (core.Transaction, core.Ledger, error) {
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	list := listOf(&l, kind)
	t, err := s.transactions.Delete(list, index, confirmed)
	if err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	if err := s.saveTransactions(ctx, user, kind, *list, applog.OpDelete); err != nil {
		return core.Transaction{}, core.Ledger{}, err
	}
	return t, l, nil
}

// SetBudget creates or replaces the limit for category.
func (s *LedgerService) SetBudget(ctx context.Context, user core.User, category, limit string) (core.Ledger, error) {
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return core.Ledger{}, err
	}
	if _, err := s.budgets.Set(&l.Budgets, category, limit); err != nil {
		return core.Ledger{}, err
	}
	if err := s.saveBudgets(ctx, user, l.Budgets, applog.OpCreate); err != nil {
		return core.Ledger{}, err
	}
	return l, nil
}

// UpdateBudget replaces the limit of the budget at the 0-based index. A blank
// limit is not an error; it reports false and writes nothing.
func (s *LedgerService) UpdateBudget(ctx context.Context, user core.User, index int, limit string) (bool, core.Ledger, error) {
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return false, core.Ledger{}, err
	}
	changed, err := s.budgets.Update(&l.Budgets, index, limit)
	if err != nil || !changed {
		return false, l, err
	}
	if err := s.saveBudgets(ctx, user, l.Budgets, applog.OpUpdate); err != nil {
		return false, core.Ledger{}, err
	}
	return true, l, nil
}

// DeleteBudget removes the budget at the 0-based index once confirmed.
func (s *LedgerService) DeleteBudget(ctx context.Context, user core.User, index int, confirmed bool) (core.BudgetEntry, core.Ledger, error) {
	defer s.lock(user.Username)()

	l, err := s.load(ctx, user)
	if err != nil {
		return core.BudgetEntry{}, core.Ledger{}, err
	}
	removed, err := s.budgets.Delete(&l.Budgets, index, confirmed)
	if err != nil {
		return core.BudgetEntry{}, core.Ledger{}, err
	}
	if err := s.saveBudgets(ctx, user, l.Budgets, applog.OpDelete); err != nil {
		return core.BudgetEntry{}, core.Ledger{}, err
	}
	return removed, l, nil
}

// CheckBudgets compares spending with every budget.
func (s *LedgerService) CheckBudgets(ctx context.Context, user core.User) ([]core.BudgetStatus, error) {
	l, err := s.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	return CheckBudgets(l.Expenses, l.Budgets), nil
}

// Report totals expenses per category.
func (s *LedgerService) Report(ctx context.Context, user core.User) ([]core.CategoryAmount, error) {
	l, err := s.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	return GenerateReport(l.Expenses), nil
}

// BillReminders returns the bills the configured policy reports today.
func (s *LedgerService) BillReminders(ctx context.Context, user core.User) ([]core.Transaction, error) {
	l, err := s.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	return CheckBillReminders(l.Expenses, s.now(), s.reminders), nil
}

// Summary totals the ledger.
func (s *LedgerService) Summary(ctx context.Context, user core.User) (core.Summary, error) {
	l, err := s.Load(ctx, user)
	if err != nil {
		return core.Summary{}, err
	}
	return Summarize(l.Expenses, l.Income), nil
}

// Currencies lists the supported currency codes in display order.
func (s *LedgerService) Currencies() []string {
	return s.transactions.converter.Currencies()
}

func (s *LedgerService) saveTransactions(ctx context.Context, user core.User, kind core.Kind, list []core.Transaction, op string) error {
	if err := s.repo.SaveTransactions(ctx, user, kind, list); err != nil {
		s.logger.LogError(ctx, "Failed to save transactions", err, applog.OpSave,
			applog.NewFields().WithUser(user.Username).WithRecords(string(kind), len(list)))
		return err
	}
	s.publish(ctx, user.Username, kind.Plural(), op, len(list))
	return nil
}

func (s *LedgerService) saveBudgets(ctx context.Context, user core.User, budgets core.Budgets, op string) error {
	if err := s.repo.SaveBudgets(ctx, user, budgets); err != nil {
		s.logger.LogError(ctx, "Failed to save budgets", err, applog.OpSave,
			applog.NewFields().WithUser(user.Username).WithRecords(amqp.PartBudgets, budgets.Len()))
		return err
	}
	s.publish(ctx, user.Username, amqp.PartBudgets, op, budgets.Len())
	return nil
}

// publish never fails the operation: the ledger is already saved.
func (s *LedgerService) publish(ctx context.Context, username, part, op string, records int) {
	if s.notifier == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(username, part, op, records)
	if err := s.notifier.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			applog.FieldUsername, username,
			applog.FieldKind, part,
			applog.FieldError, err)
	}
}

func listOf(l *core.Ledger, kind core.Kind) *[]core.Transaction {
	if kind == core.Income {
		return &l.Income
	}
	return &l.Expenses
}

// Index converts a 1-based display ID to a list index.
func Index(displayID int) int {
	return displayID - 1
}
