package services

import (
	"github.com/shopspring/decimal"

	"pesa/internal/core"
)

// GenerateReport totals expenses per category in first-seen order.
func GenerateReport(expenses []core.Transaction) []core.CategoryAmount {
	pos := make(map[string]int)
	var out []core.CategoryAmount
	for _, e := range expenses {
		i, ok := pos[e.Category]
		if !ok {
			i = len(out)
			pos[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.AmountBase)
	}
	return out
}

// Summarize totals income and expenses.
func Summarize(expenses, income []core.Transaction) core.Summary {
	s := core.Summary{TotalExpenses: decimal.Zero, TotalIncome: decimal.Zero}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.AmountBase)
	}
	for _, i := range income {
		s.TotalIncome = s.TotalIncome.Add(i.AmountBase)
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpenses)
	s.Overspent = s.TotalExpenses.GreaterThan(s.TotalIncome)
	return s
}
