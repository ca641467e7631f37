package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"pesa/internal/core"
	"pesa/internal/storage"
)

type countingInit struct {
	users []string
	err   error
}

func (c *countingInit) Init(_ context.Context, u core.User) error {
	c.users = append(c.users, u.Username)
	return c.err
}

func openStore(t *testing.T, init Initializer) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := Open(path, BcryptHasher{Cost: bcrypt.MinCost}, init, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func readRaw(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var out map[string]map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	return out
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	init := &countingInit{}
	s, path := openStore(t, init)

	user, err := s.Register(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Files != core.DefaultDataFiles("alice") {
		t.Fatalf("unexpected data files: %+v", user.Files)
	}

	got, err := s.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := s.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "bob", "pw1"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "Alice", "pw1"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("usernames are case-sensitive, got %v", err)
	}

	before := readRaw(t, path)["alice"]["password"]
	if _, err := s.Register(ctx, "alice", "pw2"); !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if after := readRaw(t, path)["alice"]["password"]; after != before {
		t.Fatalf("duplicate registration changed the stored hash")
	}
	if _, err := s.Authenticate(ctx, "alice", "pw2"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("second password must not work, got %v", err)
	}

	if len(init.users) == 0 || init.users[0] != "alice" {
		t.Fatalf("ledger storage was not initialized: %v", init.users)
	}
}

func TestRegisterStoresSaltedHash(t *testing.T) {
	s, path := openStore(t, nil)
	ctx := context.Background()
	if _, err := s.Register(ctx, "alice", "same"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.Register(ctx, "bob", "same"); err != nil {
		t.Fatalf("register: %v", err)
	}
	raw := readRaw(t, path)
	a, b := raw["alice"]["password"].(string), raw["bob"]["password"].(string)
	if a == b {
		t.Fatalf("equal passwords produced equal digests")
	}
	if !strings.HasPrefix(a, "$2") {
		t.Fatalf("expected a bcrypt digest, got %q", a)
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := openStore(t, nil)
	ctx := context.Background()
	if _, err := s.Register(ctx, "", "pw"); !errors.Is(err, core.ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := s.Register(ctx, "../root", "pw"); !errors.Is(err, core.ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := s.Register(ctx, "alice", ""); !errors.Is(err, core.ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestRegisterRefusesMalformedIndex(t *testing.T) {
	s, path := openStore(t, nil)
	if err := os.WriteFile(path, []byte(`{"alice": {"password": `), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(context.Background(), "bob", "pw"); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"alice": {"password": ` {
		t.Fatalf("malformed index was overwritten: %q", data)
	}
	if _, err := s.Authenticate(context.Background(), "alice", "pw"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateLegacyAccount(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	legacy, _ := SHA256Hasher{}.Hash("pw1")

	// Written by the graphical front end: singular expense key.
	content := `{"carol": {"password": "` + legacy + `", "data_files": {"expense": "carol_expenses.csv", "income": "carol_income.csv", "budgets": "carol_budgets.json"}},
	             "dave": {"password": "` + legacy + `"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	repo, err := storage.NewFileRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(path, BcryptHasher{Cost: bcrypt.MinCost}, repo, nil)
	if err != nil {
		t.Fatal(err)
	}

	carol, err := s.Authenticate(ctx, "carol", "pw1")
	if err != nil {
		t.Fatalf("legacy digest rejected: %v", err)
	}
	if carol.Files.Expenses != "carol_expenses.csv" {
		t.Fatalf("singular expense key not read: %+v", carol.Files)
	}

	dave, err := s.Authenticate(ctx, "dave", "pw1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if dave.Files != core.DefaultDataFiles("dave") {
		t.Fatalf("data files not backfilled: %+v", dave.Files)
	}
	raw := readRaw(t, path)
	if _, ok := raw["dave"]["data_files"]; !ok {
		t.Fatalf("backfill not persisted: %v", raw["dave"])
	}
	if raw["dave"]["password"] != legacy {
		t.Fatalf("password digest must not be rewritten")
	}
	if _, err := os.Stat(filepath.Join(dir, "dave_income.csv")); err != nil {
		t.Fatalf("ledger files not initialized on login: %v", err)
	}
	// dave's backfill rewrote the index; carol's entry now uses the plural key.
	files := readRaw(t, path)["carol"]["data_files"].(map[string]any)
	if files["expenses"] != "carol_expenses.csv" {
		t.Fatalf("expense key not normalized: %v", files)
	}
	if _, ok := files["expense"]; ok {
		t.Fatalf("singular expense key written back: %v", files)
	}
}

func TestUserAndClose(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, nil)
	if _, err := s.Register(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	u, err := s.User(ctx, "alice")
	if err != nil || u.Username != "alice" {
		t.Fatalf("user: %+v %v", u, err)
	}
	if _, err := s.User(ctx, "nobody"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(ctx, "alice", "pw"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRegisterReportsInitFailure(t *testing.T) {
	init := &countingInit{err: core.ErrPersistence}
	s, path := openStore(t, init)
	if _, err := s.Register(context.Background(), "alice", "pw"); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if _, ok := readRaw(t, path)["alice"]; !ok {
		t.Fatalf("account should be stored even when ledger init fails")
	}
}
