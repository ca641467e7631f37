package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pesa/internal/core"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set, list, update, delete or check category budgets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set CATEGORY LIMIT",
			Short: "Create or replace the limit for a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := a.login(cmd.Context())
				if err != nil {
					return err
				}
				l, err := a.ledger().SetBudget(cmd.Context(), user, args[0], args[1])
				if err != nil {
					return err
				}
				limit, _ := l.Budgets.Get(args[0])
				fmt.Fprintf(a.out, "Budget for %s set to %s %s\n", args[0], limit.StringFixed(2), core.BaseCurrency)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List budgets with their IDs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				user, err := a.login(cmd.Context())
				if err != nil {
					return err
				}
				l, err := a.ledger().Load(cmd.Context(), user)
				if err != nil {
					return err
				}
				if l.Budgets.Len() == 0 {
					fmt.Fprintln(a.out, "No budgets set.")
					return nil
				}
				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "ID\tCategory\tLimit (%s)\n", core.BaseCurrency)
				for i, b := range l.Budgets.Entries() {
					fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, b.Category, b.Limit.StringFixed(2))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "update ID LIMIT",
			Short: "Change the limit of a budget",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseID(args[0])
				if err != nil {
					return err
				}
				user, err := a.login(cmd.Context())
				if err != nil {
					return err
				}
				changed, l, err := a.ledger().UpdateBudget(cmd.Context(), user, index, args[1])
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintln(a.out, "Budget unchanged.")
					return nil
				}
				b, _ := l.Budgets.At(index)
				fmt.Fprintf(a.out, "Budget for %s updated to %s %s\n", b.Category, b.Limit.StringFixed(2), core.BaseCurrency)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a budget (requires --yes)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseID(args[0])
				if err != nil {
					return err
				}
				user, err := a.login(cmd.Context())
				if err != nil {
					return err
				}
				removed, _, err := a.ledger().DeleteBudget(cmd.Context(), user, index, a.yes)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted budget for %s\n", removed.Category)
				return nil
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Compare spending with each budget",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				user, err := a.login(cmd.Context())
				if err != nil {
					return err
				}
				statuses, err := a.ledger().CheckBudgets(cmd.Context(), user)
				if err != nil {
					return err
				}
				if len(statuses) == 0 {
					fmt.Fprintln(a.out, "No budgets set.")
					return nil
				}
				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "Category\tSpent\tLimit\tRemaining\t")
				for _, s := range statuses {
					flag := ""
					if s.Remaining.IsNegative() {
						flag = "OVER"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Category, s.Spent.StringFixed(2), s.Limit.StringFixed(2), s.Remaining.StringFixed(2), flag)
				}
				return w.Flush()
			},
		},
	)
	return cmd
}
