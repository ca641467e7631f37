package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"pesa/internal/amqp"
	"pesa/internal/core"
	"pesa/internal/worker"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEDGER_DATA_DIR", dir)
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LEDGER_PASSWORD", "")
	return dir
}

// runCLI executes one command line and returns its exit code and output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := newApp(nil, &out, &errOut).run(context.Background(), args)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, out, errOut := runCLI(t, args...)
	if code != 0 {
		t.Fatalf("ledger %s exited %d: %s", strings.Join(args, " "), code, errOut)
	}
	return out
}

func TestRegisterAndLedgerCommands(t *testing.T) {
	dir := setupEnv(t)
	auth := []string{"--user", "alice", "--password", "s3cret"}
	with := func(args ...string) []string { return append(args, auth...) }

	mustRun(t, with("register")...)
	if _, err := os.Stat(filepath.Join(dir, "alice_expenses.csv")); err != nil {
		t.Fatalf("expenses file not created: %v", err)
	}

	mustRun(t, with("expense", "add", "--date", "2025-03-01", "--amount", "2000", "--category", "Food")...)
	mustRun(t, with("expense", "add", "--date", "2025-03-02", "--amount", "7.80", "--currency", "USD", "--category", "Food")...)
	mustRun(t, with("income", "add", "--date", "2025-03-01", "--amount", "10000", "--source", "Salary")...)

	out := mustRun(t, with("expense", "list")...)
	if !strings.Contains(out, "7.80 USD") || !strings.Contains(out, "1000.00") {
		t.Errorf("expense list missing converted record:\n%s", out)
	}

	out = mustRun(t, with("report")...)
	if !strings.Contains(out, "Food") || !strings.Contains(out, "3000.00") {
		t.Errorf("report:\n%s", out)
	}

	mustRun(t, with("budget", "set", "Food", "5000")...)
	out = mustRun(t, with("budget", "check")...)
	if !strings.Contains(out, "2000.00") {
		t.Errorf("budget check:\n%s", out)
	}

	out = mustRun(t, with("summary")...)
	if !strings.Contains(out, "Balance:  7000.00 KES") {
		t.Errorf("summary:\n%s", out)
	}

	mustRun(t, with("expense", "update", "1", "--notes", "market")...)
	out = mustRun(t, with("expense", "list")...)
	if !strings.Contains(out, "market") {
		t.Errorf("updated notes missing:\n%s", out)
	}

	code, _, errOut := runCLI(t, with("expense", "delete", "1")...)
	if code == 0 || !strings.Contains(errOut, "--yes") {
		t.Errorf("unconfirmed delete: code %d, stderr %q", code, errOut)
	}
	mustRun(t, with("expense", "delete", "1", "--yes")...)
	out = mustRun(t, with("expense", "list")...)
	if strings.Contains(out, "market") {
		t.Errorf("deleted record still listed:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)
	mustRun(t, "register", "bob", "--password", "pw")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"duplicate user", []string{"register", "bob", "--password", "pw"}, "already exists"},
		{"wrong password", []string{"summary", "--user", "bob", "--password", "nope"}, "invalid username or password"},
		{"missing user", []string{"summary", "--password", "pw"}, "--user is required"},
		{"bad ID", []string{"expense", "delete", "x", "--user", "bob", "--password", "pw", "--yes"}, "no record with that ID"},
		{"ID out of range", []string{"budget", "update", "3", "100", "--user", "bob", "--password", "pw"}, "no record with that ID"},
		{"unknown currency", []string{"expense", "add", "--amount", "1", "--currency", "JPY", "--user", "bob", "--password", "pw"}, "unknown currency"},
		{"blank budget category", []string{"budget", "set", "", "100", "--user", "bob", "--password", "pw"}, "category cannot be empty"},
		{"exponent amount", []string{"expense", "add", "--amount", "1e999999999", "--user", "bob", "--password", "pw"}, "exponent notation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != 1 {
				t.Fatalf("exit code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestPasswordFromEnvironment(t *testing.T) {
	setupEnv(t)
	t.Setenv("LEDGER_PASSWORD", "from-env")
	mustRun(t, "register", "carol")

	out := mustRun(t, "summary", "--user", "carol")
	if !strings.Contains(out, "Balance:  0.00 KES") {
		t.Errorf("summary:\n%s", out)
	}
}

func TestCurrencies(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "currencies")
	if strings.TrimSpace(out) != "KES USD EUR GBP" {
		t.Errorf("currencies = %q", out)
	}
}

func TestWatchRequiresBroker(t *testing.T) {
	setupEnv(t)
	code, _, errOut := runCLI(t, "watch")
	if code != 1 || !strings.Contains(errOut, "AMQP_URL") {
		t.Errorf("watch: code %d, stderr %q", code, errOut)
	}
}

func TestPrintAlert(t *testing.T) {
	var out bytes.Buffer
	a := newApp(nil, &out, &out)

	msg := amqp.NewLedgerChangedMessage("alice", amqp.PartExpenses, "create", 4)
	over := core.BudgetStatus{Category: "Food", Remaining: decimal.RequireFromString("-250.5")}
	if err := a.printAlert(worker.Alert{Change: msg, OverBudget: []core.BudgetStatus{over}}); err != nil {
		t.Fatalf("printAlert() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "alice  create expenses (4 records)") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "over budget: Food by 250.50 KES") {
		t.Errorf("output = %q", got)
	}
}
