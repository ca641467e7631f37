package accounts

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces the stored digest for a password.
type Hasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher produces salted, slow digests.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SHA256Hasher produces the unsalted hex digests found in legacy account
// files. Only use it when stored hashes must stay byte-compatible.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// NewHasher returns the hasher configured by name ("bcrypt" or "sha256").
func NewHasher(name string, cost int) (Hasher, error) {
	switch name {
	case "", "bcrypt":
		return BcryptHasher{Cost: cost}, nil
	case "sha256":
		return SHA256Hasher{}, nil
	default:
		return nil, errors.New("unknown password hash: " + name)
	}
}

// Verify checks password against a stored digest of either format.
func Verify(stored, password string) bool {
	if isLegacyDigest(stored) {
		sum := sha256.Sum256([]byte(password))
		want := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func isLegacyDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
