package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pesa/internal/core"
	"pesa/internal/services"
)

// transactionFlags are shared by add and update. Blank values keep the
// current field on update.
type transactionFlags struct {
	date     string
	currency string
	amount   string
	category string
	notes    string
}

func (f *transactionFlags) register(cmd *cobra.Command, kind core.Kind, currencyDefault string) {
	field := strings.ToLower(kind.CategoryField())
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date as YYYY-MM-DD (default today on add).")
	cmd.Flags().StringVarP(&f.currency, "currency", "c", currencyDefault, "Currency code of the amount.")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount in the given currency.")
	cmd.Flags().StringVarP(&f.category, field, "k", "", fmt.Sprintf("%s of the %s.", kind.CategoryField(), kind))
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", "Free-form notes.")
}

func (f *transactionFlags) input() services.TransactionInput {
	return services.TransactionInput{
		Date:     f.date,
		Currency: f.currency,
		Amount:   f.amount,
		Category: f.category,
		Notes:    f.notes,
	}
}

func newTransactionCmd(a *app, kind core.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Add, list, update or delete %s", kind.Plural()),
	}
	cmd.AddCommand(
		newTransactionAddCmd(a, kind),
		newTransactionListCmd(a, kind),
		newTransactionUpdateCmd(a, kind),
		newTransactionDeleteCmd(a, kind),
	)
	return cmd
}

func newTransactionAddCmd(a *app, kind core.Kind) *cobra.Command {
	var f transactionFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Record a new %s", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			t, _, err := a.ledger().AddTransaction(cmd.Context(), user, kind, f.input())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s %s: %s %s (%s)\n", kind, t.Date, t.Category, formatAmount(t), t.OriginalAmount)
			return nil
		},
	}
	f.register(cmd, kind, core.BaseCurrency)
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newTransactionListCmd(a *app, kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s with their IDs", kind.Plural()),
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
			list := l.Transactions(kind)
			if len(list) == 0 {
				fmt.Fprintf(a.out, "No %s recorded.\n", kind.Plural())
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tDate\t%s\tAmount (%s)\tOriginal\tNotes\n", kind.CategoryField(), core.BaseCurrency)
			for id, t := range services.NewTransactionService(nil, nil).List(list) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", id, t.Date, t.Category, formatAmount(t), t.OriginalAmount, t.Notes)
			}
			return w.Flush()
		},
	}
}

func newTransactionUpdateCmd(a *app, kind core.Kind) *cobra.Command {
	var f transactionFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: fmt.Sprintf("Change fields of an %s; omitted flags keep their value", kind),
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
			l, err := a.ledger().UpdateTransaction(cmd.Context(), user, kind, index, f.input())
			if err != nil {
				return err
			}
			t := l.Transactions(kind)[index]
			fmt.Fprintf(a.out, "Updated %s %s: %s %s (%s)\n", kind, args[0], t.Category, formatAmount(t), t.OriginalAmount)
			return nil
		},
	}
	f.register(cmd, kind, "")
	return cmd
}

func newTransactionDeleteCmd(a *app, kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: fmt.Sprintf("Delete an %s (requires --yes)", kind),
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
			t, _, err := a.ledger().DeleteTransaction(cmd.Context(), user, kind, index, a.yes)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s %s: %s %s %s\n", kind, args[0], t.Date, t.Category, formatAmount(t))
			return nil
		},
	}
}

func formatAmount(t core.Transaction) string {
	return t.AmountBase.StringFixed(2)
}
