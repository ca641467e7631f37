package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetEntry is a standing spending limit for one category, in base currency.
type BudgetEntry struct {
	Category string
	Limit    decimal.Decimal
}

// Budgets maps categories to limits, keeping insertion order. Positions
// returned by Entries are the indices used by update and delete.
type Budgets struct {
	entries []BudgetEntry
}

func (b *Budgets) Len() int { return len(b.entries) }

// Entries returns a copy of the entries in insertion order.
func (b *Budgets) Entries() []BudgetEntry {
	return append([]BudgetEntry(nil), b.entries...)
}

// Get returns the limit for category.
func (b *Budgets) Get(category string) (decimal.Decimal, bool) {
	if i := b.indexOf(category); i >= 0 {
		return b.entries[i].Limit, true
	}
	return decimal.Zero, false
}

// Set upserts a limit. An existing category keeps its position.
func (b *Budgets) Set(category string, limit decimal.Decimal) {
	if i := b.indexOf(category); i >= 0 {
		b.entries[i].Limit = limit
		return
	}
	b.entries = append(b.entries, BudgetEntry{Category: category, Limit: limit})
}

// At returns the entry at position i.
func (b *Budgets) At(i int) (BudgetEntry, error) {
	if i < 0 || i >= len(b.entries) {
		return BudgetEntry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, i, len(b.entries))
	}
	return b.entries[i], nil
}

// RemoveAt deletes and returns the entry at position i.
func (b *Budgets) RemoveAt(i int) (BudgetEntry, error) {
	e, err := b.At(i)
	if err != nil {
		return BudgetEntry{}, err
	}
	b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
	return e, nil
}

// Clone returns an independent copy.
func (b *Budgets) Clone() Budgets {
	return Budgets{entries: b.Entries()}
}

func (b *Budgets) indexOf(category string) int {
	for i, e := range b.entries {
		if e.Category == category {
			return i
		}
	}
	return -1
}

// MarshalJSON writes a JSON object with keys in insertion order and numeric limits.
func (b Budgets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(e.Limit.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of category -> number, keeping file order.
// A repeated key keeps its first position and its last value.
func (b *Budgets) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("budgets: expected object, got %v", tok)
	}

	var out Budgets
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("budgets: expected key, got %v", tok)
		}
		var raw json.Number
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("budgets: limit for %q: %w", category, err)
		}
		limit, err := ParseDecimal(raw.String())
		if err != nil {
			return fmt.Errorf("budgets: limit for %q: %w", category, err)
		}
		out.Set(category, limit)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}
