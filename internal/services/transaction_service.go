package services

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pesa/internal/core"
)

// TransactionInput carries the raw fields supplied by a front end. On update a
// blank field keeps the current value.
type TransactionInput struct {
	Date     string // YYYY-MM-DD; blank means today on add
	Currency string
	Amount   string
	Category string // category for expenses, source for income
	Notes    string
}

// TransactionService mutates in-memory transaction lists. It never persists;
// callers save the list afterwards.
type TransactionService struct {
	converter *core.Converter
	now       func() time.Time
}

func NewTransactionService(converter *core.Converter, now func() time.Time) *TransactionService {
	if converter == nil {
		converter = core.DefaultConverter()
	}
	if now == nil {
		now = time.Now
	}
	return &TransactionService{converter: converter, now: now}
}

// Add converts the amount to the base currency and appends the new record.
func (s *TransactionService) Add(list *[]core.Transaction, in TransactionInput) (core.Transaction, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().Format(core.DateLayout)
	}
	if _, err := core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	base, err := s.converter.ToBase(amount, currency)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		Date:           date,
		Category:       in.Category,
		AmountBase:     base,
		OriginalAmount: core.FormatOriginal(amount, currency),
		Notes:          in.Notes,
	}
	*list = append(*list, t)
	return t, nil
}

// Update changes the record at index. Every field is validated before the
// record is touched; amount_base is recomputed only when currency or amount change.
func (s *TransactionService) Update(list *[]core.Transaction, index int, in TransactionInput) error {
	if err := checkIndex(*list, index); err != nil {
		return err
	}
	t := (*list)[index]

	if date := strings.TrimSpace(in.Date); date != "" {
		if _, err := core.ParseDate(date); err != nil {
			return err
		}
		t.Date = date
	}

	currency, amountStr := strings.ToUpper(strings.TrimSpace(in.Currency)), strings.TrimSpace(in.Amount)
	if currency != "" || amountStr != "" {
		var (
			amount decimal.Decimal
			err    error
		)
		if currency == "" || amountStr == "" {
			oldAmount, oldCurrency, err := core.SplitOriginal(t.OriginalAmount)
			if err != nil {
				return err
			}
			if currency == "" {
				currency = oldCurrency
			}
			amount = oldAmount
		}
		if amountStr != "" {
			if amount, err = core.ParseAmount(amountStr); err != nil {
				return err
			}
		}
		base, err := s.converter.ToBase(amount, currency)
		if err != nil {
			return err
		}
		t.AmountBase = base
		t.OriginalAmount = core.FormatOriginal(amount, currency)
	}

	if in.Category != "" {
		t.Category = in.Category
	}
	if in.Notes != "" {
		t.Notes = in.Notes
	}

	(*list)[index] = t
	return nil
}

// Delete removes and returns the record at index once confirmed. Later
// records move up one position.
func (s *TransactionService) Delete(list *[]core.Transaction, index int, confirmed bool) (core.Transaction, error) {
	if err := checkIndex(*list, index); err != nil {
		return core.Transaction{}, err
	}
	if !confirmed {
		return core.Transaction{}, core.ErrNotConfirmed
	}
	t := (*list)[index]
	*list = append((*list)[:index:index], (*list)[index+1:]...)
	return t, nil
}

// List yields records with their 1-based display IDs.
func (s *TransactionService) List(list []core.Transaction) iter.Seq2[int, core.Transaction] {
	return func(yield func(int, core.Transaction) bool) {
		for i, t := range list {
			if !yield(i+1, t) {
				return
			}
		}
	}
}

func checkIndex(list []core.Transaction, index int) error {
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %d not in [0, %d)", core.ErrInvalidIndex, index, len(list))
	}
	return nil
}
