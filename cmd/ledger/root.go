package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"pesa/internal/backend"
	"pesa/internal/cli"
	"pesa/internal/config"
	"pesa/internal/core"
	applog "pesa/internal/log"
	"pesa/internal/services"
)

// app holds the state shared by every subcommand for one invocation.
type app struct {
	in     *os.File
	out    io.Writer
	errOut io.Writer

	username string
	password string
	envFile  string
	yes      bool

	cfg     *config.Config
	logger  *applog.Logger
	backend *backend.Result
}

func newApp(in *os.File, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

// run executes one command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	err = errors.Join(err, a.close())
	if err != nil {
		fmt.Fprintln(a.errOut, "Error:", describe(err))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Track expenses, income and budgets in a personal ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	if a.in != nil {
		root.SetIn(a.in)
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.username, "user", "u", "", "Account username.")
	flags.StringVarP(&a.password, "password", "p", "", "Account password (default $"+cli.PasswordEnv+", then prompt).")
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from this file (default .env).")
	flags.BoolVarP(&a.yes, "yes", "y", false, "Confirm deletions.")

	root.AddCommand(
		newRegisterCmd(a),
		newCurrenciesCmd(a),
		newTransactionCmd(a, core.Expense),
		newTransactionCmd(a, core.Income),
		newBudgetCmd(a),
		newReportCmd(a),
		newBillsCmd(a),
		newSummaryCmd(a),
		newWatchCmd(a),
	)

	return root
}

func (a *app) open(ctx context.Context) error {
	if a.envFile != "" {
		cli.LoadEnvFile(a.envFile)
	} else {
		cli.LoadEnvFile()
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cli.SetupLogger(cfg)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(a.logger).Create(ctx, bcfg)
	if err != nil {
		return err
	}
	a.backend = result
	return nil
}

func (a *app) close() error {
	if a.backend == nil || a.backend.Cleanup == nil {
		return nil
	}
	err := a.backend.Cleanup()
	a.backend = nil
	return err
}

// login authenticates --user with the resolved password.
func (a *app) login(ctx context.Context) (core.User, error) {
	if a.username == "" {
		return core.User{}, errors.New("--user is required")
	}
	password, err := a.passwords().Resolve(a.password, "Password: ")
	if err != nil {
		return core.User{}, err
	}
	return a.backend.Accounts.Authenticate(ctx, a.username, password)
}

func (a *app) passwords() cli.PasswordSource {
	return cli.PasswordSource{In: a.in, Out: a.errOut}
}

func (a *app) ledger() *services.LedgerService {
	return a.backend.Ledger
}

// parseID converts a 1-based display ID to a list index.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", core.ErrInvalidIndex, arg)
	}
	return services.Index(id), nil
}

// describe turns domain errors into messages for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, core.ErrDuplicateUsername):
		return "username already exists"
	case errors.Is(err, core.ErrNotConfirmed):
		return "not deleted: pass --yes to confirm"
	case errors.Is(err, core.ErrInvalidIndex):
		return "no record with that ID"
	default:
		return err.Error()
	}
}
