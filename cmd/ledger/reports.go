package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pesa/internal/core"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Total expenses per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			totals, err := a.ledger().Report(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				fmt.Fprintln(a.out, "No expenses recorded.")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Category\tTotal (%s)\n", core.BaseCurrency)
			for _, c := range totals {
				fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Amount.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newBillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bills",
		Short: "Show bill expenses due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			bills, err := a.ledger().BillReminders(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(bills) == 0 {
				fmt.Fprintln(a.out, "No upcoming bills.")
				return nil
			}
			for _, b := range bills {
				fmt.Fprintf(a.out, "%s  %s  %s %s\n", b.Date, b.Category, formatAmount(b), core.BaseCurrency)
			}
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total income, expenses and net balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			s, err := a.ledger().Summary(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Income:   %s %s\n", s.TotalIncome.StringFixed(2), core.BaseCurrency)
			fmt.Fprintf(a.out, "Expenses: %s %s\n", s.TotalExpenses.StringFixed(2), core.BaseCurrency)
			fmt.Fprintf(a.out, "Balance:  %s %s\n", s.NetBalance.StringFixed(2), core.BaseCurrency)
			if s.Overspent {
				fmt.Fprintln(a.out, "Warning: expenses exceed income.")
			}
			return nil
		},
	}
}
