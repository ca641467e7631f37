package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and display format of transaction dates.
const DateLayout = "2006-01-02"

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

type (
	// Kind discriminates the two transaction containers of a ledger.
	Kind string

	// Transaction is one dated money movement. Its identity is its position
	// in the owning list.
	Transaction struct {
		Date           string
		Category       string // Category for expenses, Source for income
		AmountBase     decimal.Decimal
		OriginalAmount string // "<amount> <currency-code>"
		Notes          string
	}

	// DataFiles holds the per-user storage locations, relative to the data directory.
	DataFiles struct {
		Expenses string
		Income   string
		Budgets  string
	}

	User struct {
		Username     string
		PasswordHash string
		Files        DataFiles
	}

	// Ledger is the per-user triple of expenses, income and budgets.
	Ledger struct {
		Expenses []Transaction
		Income   []Transaction
		Budgets  Budgets
	}
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrEmptyCategory      = errors.New("category cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrParse              = errors.New("parse error")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidIndex       = errors.New("invalid index")
	ErrNotConfirmed       = errors.New("operation not confirmed")
	ErrPersistence        = errors.New("persistence error")
	ErrUnknownKind        = errors.New("unknown transaction kind")
)

// Validate reports whether k names one of the transaction containers.
func (k Kind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return ErrUnknownKind
	}
}

// Header returns the tabular header row for records of this kind.
func (k Kind) Header() []string {
	return []string{"Date", k.CategoryField(), "Amount", "Original_Amount", "Notes"}
}

// CategoryField is the column name holding the category (expenses) or source (income).
func (k Kind) CategoryField() string {
	if k == Income {
		return "Source"
	}
	return "Category"
}

// Plural is used in messages and as the data_files key.
func (k Kind) Plural() string {
	if k == Income {
		return "income"
	}
	return "expenses"
}

// DefaultDataFiles returns the storage locations assigned to a new account.
func DefaultDataFiles(username string) DataFiles {
	return DataFiles{
		Expenses: username + "_expenses.csv",
		Income:   username + "_income.csv",
		Budgets:  username + "_budgets.json",
	}
}

// File returns the transaction file for the given kind.
func (f DataFiles) File(k Kind) string {
	if k == Income {
		return f.Income
	}
	return f.Expenses
}

// Complete reports whether every location is set.
func (f DataFiles) Complete() bool {
	return f.Expenses != "" && f.Income != "" && f.Budgets != ""
}

// Backfill fills missing locations with the defaults for username and
// reports whether anything changed.
func (f *DataFiles) Backfill(username string) bool {
	def := DefaultDataFiles(username)
	changed := false
	if f.Expenses == "" {
		f.Expenses, changed = def.Expenses, true
	}
	if f.Income == "" {
		f.Income, changed = def.Income, true
	}
	if f.Budgets == "" {
		f.Budgets, changed = def.Budgets, true
	}
	return changed
}

// ValidateUsername rejects names that are empty or would escape the data directory.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidUsername
	}
	if strings.ContainsAny(username, `/\`) || strings.Contains(username, "..") {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateCategory rejects blank budget categories.
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Transactions returns the list of the given kind.
func (l Ledger) Transactions(k Kind) []Transaction {
	if k == Income {
		return l.Income
	}
	return l.Expenses
}

// Time returns the parsed transaction date.
func (t Transaction) Time() (time.Time, error) {
	return ParseDate(t.Date)
}
