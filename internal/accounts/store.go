// Package accounts maps usernames to password digests and per-user data
// file locations, persisted as one shared JSON index.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pesa/internal/core"
	applog "pesa/internal/log"
)

var ErrClosed = errors.New("account store is closed")

// Initializer prepares empty ledger storage for a user. It must be idempotent.
type Initializer interface {
	Init(ctx context.Context, user core.User) error
}

// Store is the account index for one session. Each operation reads the
// index fresh from disk and writes it back only when it changed.
type Store struct {
	mu     sync.Mutex
	path   string
	hasher Hasher
	ledger Initializer
	logger *applog.Logger
	closed bool
}

// Open returns a store over the index file at path.
func Open(path string, hasher Hasher, ledger Initializer, logger *applog.Logger) (*Store, error) {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create account directory: %v", core.ErrPersistence, err)
	}
	return &Store{
		path:   path,
		hasher: hasher,
		ledger: ledger,
		logger: logger.WithComponent(applog.ComponentAccounts),
	}, nil
}

// Close ends the session. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Register creates an account with default data file locations and
// initializes its empty ledger.
func (s *Store) Register(ctx context.Context, username, password string) (core.User, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.User{}, fmt.Errorf("%w: %q", err, username)
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.User{}, ErrClosed
	}

	// A malformed index is refused here: rewriting it would drop every account.
	ix, err := readIndex(s.path)
	if err != nil {
		return core.User{}, err
	}
	if _, exists := ix[username]; exists {
		return core.User{}, fmt.Errorf("%w: %q", core.ErrDuplicateUsername, username)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	files := core.DefaultDataFiles(username)
	ix[username] = &record{Password: digest, DataFiles: &dataFiles{DataFiles: files}}
	if err := writeIndex(s.path, ix); err != nil {
		return core.User{}, err
	}

	user, _ := ix.user(username)
	if err := s.initLedger(ctx, user); err != nil {
		return user, err
	}

	s.logger.InfoContext(ctx, "Account registered",
		applog.FieldOperation, applog.OpRegister,
		applog.FieldUsername, username)
	return user, nil
}

// Authenticate checks the password and returns the account, backfilling
// missing data file locations for older accounts.
func (s *Store) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.User{}, ErrClosed
	}

	ix := s.readLenient(ctx)
	user, ok := ix.user(username)
	if !ok || password == "" || !Verify(user.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Authentication failed",
			applog.FieldOperation, applog.OpAuthenticate,
			applog.FieldUsername, username)
		return core.User{}, core.ErrInvalidCredentials
	}

	user, err := s.complete(ctx, ix, username)
	if err != nil {
		return core.User{}, err
	}
	if err := s.initLedger(ctx, user); err != nil {
		return core.User{}, err
	}
	return user, nil
}

// User returns a registered account without checking credentials.
func (s *Store) User(ctx context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.User{}, ErrClosed
	}

	ix := s.readLenient(ctx)
	if _, ok := ix[username]; !ok {
		return core.User{}, fmt.Errorf("%w: unknown user %q", core.ErrInvalidCredentials, username)
	}
	return s.complete(ctx, ix, username)
}

// complete backfills missing file locations and persists them.
func (s *Store) complete(ctx context.Context, ix index, username string) (core.User, error) {
	if ix.backfill(username) {
		if err := writeIndex(s.path, ix); err != nil {
			return core.User{}, err
		}
		s.logger.InfoContext(ctx, "Backfilled data file locations", applog.FieldUsername, username)
	}
	user, _ := ix.user(username)
	return user, nil
}

// readLenient treats an unreadable index as empty, logging a warning.
func (s *Store) readLenient(ctx context.Context) index {
	ix, err := readIndex(s.path)
	if err != nil {
		s.logger.WarnContext(ctx, "Account index unreadable, treating as empty",
			applog.FieldPath, s.path, applog.FieldError, err)
		return index{}
	}
	return ix
}

func (s *Store) initLedger(ctx context.Context, user core.User) error {
	if s.ledger == nil {
		return nil
	}
	if err := s.ledger.Init(ctx, user); err != nil {
		s.logger.LogError(ctx, "Failed to initialize ledger storage", err, applog.OpRegister,
			applog.NewFields().WithUser(user.Username))
		return err
	}
	return nil
}
