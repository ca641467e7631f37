package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create a new account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := a.username
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				return errors.New("a username is required: pass it as an argument or with --user")
			}
			password, err := a.passwords().Resolve(a.password, "Choose a password: ")
			if err != nil {
				return err
			}
			user, err := a.backend.Accounts.Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s\n", user.Username)
			return nil
		},
	}
}

func newCurrenciesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currency codes",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.out, strings.Join(a.ledger().Currencies(), " "))
			return nil
		},
	}
}
