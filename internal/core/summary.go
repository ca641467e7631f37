package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// BudgetStatus compares one budgeted category with what was spent on it.
// Remaining is negative when the budget is exceeded.
type BudgetStatus struct {
	Category  string
	Spent     decimal.Decimal
	Limit     decimal.Decimal
	Remaining decimal.Decimal
}

// Summary is the quick overview of a ledger's totals.
type Summary struct {
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
	NetBalance    decimal.Decimal
	Overspent     bool // expenses exceed income
}
