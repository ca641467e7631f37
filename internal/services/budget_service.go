package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"pesa/internal/core"
)

// BudgetService mutates in-memory budget maps and compares them with spending.
type BudgetService struct{}

func NewBudgetService() *BudgetService {
	return &BudgetService{}
}

// Set upserts the limit for category.
func (s *BudgetService) Set(budgets *core.Budgets, category, limit string) (core.BudgetEntry, error) {
	if err := core.ValidateCategory(category); err != nil {
		return core.BudgetEntry{}, err
	}
	amount, err := core.ParseAmount(limit)
	if err != nil {
		return core.BudgetEntry{}, err
	}
	budgets.Set(category, amount)
	return core.BudgetEntry{Category: category, Limit: amount}, nil
}

// Update replaces the limit of the budget at index. A blank limit changes
// nothing and reports false.
func (s *BudgetService) Update(budgets *core.Budgets, index int, limit string) (bool, error) {
	entry, err := budgets.At(index)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(limit) == "" {
		return false, nil
	}
	amount, err := core.ParseAmount(limit)
	if err != nil {
		return false, err
	}
	budgets.Set(entry.Category, amount)
	return true, nil
}

// Delete removes the budget at index once confirmed.
func (s *BudgetService) Delete(budgets *core.Budgets, index int, confirmed bool) (core.BudgetEntry, error) {
	if _, err := budgets.At(index); err != nil {
		return core.BudgetEntry{}, err
	}
	if !confirmed {
		return core.BudgetEntry{}, core.ErrNotConfirmed
	}
	return budgets.RemoveAt(index)
}

// CheckBudgets reports spending against every budgeted category, in budget
// order. Categories without a budget are not reported.
func CheckBudgets(expenses []core.Transaction, budgets core.Budgets) []core.BudgetStatus {
	spent := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		spent[e.Category] = spent[e.Category].Add(e.AmountBase)
	}

	entries := budgets.Entries()
	out := make([]core.BudgetStatus, 0, len(entries))
	for _, b := range entries {
		s := spent[b.Category]
		out = append(out, core.BudgetStatus{
			Category:  b.Category,
			Spent:     s,
			Limit:     b.Limit,
			Remaining: b.Limit.Sub(s),
		})
	}
	return out
}
