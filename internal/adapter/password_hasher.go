package adapter

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher decouples the identity use cases from the hashing algorithm.
type PasswordHasher interface {
	// Hash returns an encoded hash that carries its own salt and parameters.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches encoded. A malformed hash is a mismatch.
	Verify(plain, encoded string) bool
}

const argon2idPrefix = "$argon2id$"

// Argon2idHasher is the default PasswordHasher.
type Argon2idHasher struct {
	params *argon2id.Params
	logger *zap.Logger
}

// NewArgon2idHasher creates an Argon2idHasher with the library defaults.
func NewArgon2idHasher(logger *zap.Logger) *Argon2idHasher {
	return &Argon2idHasher{params: argon2id.DefaultParams, logger: logger}
}

// Hash implements PasswordHasher.
func (h *Argon2idHasher) Hash(plain string) (string, error) {
	encoded, err := argon2id.CreateHash(plain, h.params)
	if err != nil {
		return "", fmt.Errorf("argon2id hash: %w", err)
	}
	return encoded, nil
}

// Verify implements PasswordHasher.
func (h *Argon2idHasher) Verify(plain, encoded string) bool {
	if !strings.HasPrefix(encoded, argon2idPrefix) {
		return false
	}
	ok, err := argon2id.ComparePasswordAndHash(plain, encoded)
	if err != nil {
		h.logger.Warn("stored argon2id hash could not be decoded", zap.Error(err))
		return false
	}
	return ok
}

// BcryptHasher is the alternative PasswordHasher.
type BcryptHasher struct {
	cost   int
	logger *zap.Logger
}

// NewBcryptHasher creates a BcryptHasher with bcrypt.DefaultCost.
func NewBcryptHasher(logger *zap.Logger) *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost, logger: logger}
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(encoded), nil
}

// Verify implements PasswordHasher.
func (h *BcryptHasher) Verify(plain, encoded string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		h.logger.Warn("stored bcrypt hash could not be decoded", zap.Error(err))
	}
	return err == nil
}

// NewPasswordHasher selects the algorithm used for new hashes by name
// ("argon2id" or "bcrypt"). Verification follows the format of the stored
// hash, so accounts hashed before a switch keep working.
func NewPasswordHasher(name string, logger *zap.Logger) (PasswordHasher, error) {
	argon, bc := NewArgon2idHasher(logger), NewBcryptHasher(logger)
	switch strings.ToLower(name) {
	case "", "argon2id":
		return &formatHasher{primary: argon, argon2id: argon, bcrypt: bc}, nil
	case "bcrypt":
		return &formatHasher{primary: bc, argon2id: argon, bcrypt: bc}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// formatHasher hashes with primary and verifies with whichever algorithm
// produced the stored hash.
type formatHasher struct {
	primary  PasswordHasher
	argon2id *Argon2idHasher
	bcrypt   *BcryptHasher
}

func (h *formatHasher) Hash(plain string) (string, error) {
	return h.primary.Hash(plain)
}

func (h *formatHasher) Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argon2idPrefix):
		return h.argon2id.Verify(plain, encoded)
	case isBcryptHash(encoded):
		return h.bcrypt.Verify(plain, encoded)
	default:
		return false
	}
}

func isBcryptHash(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

// RandomPassword returns a throwaway secret of n random bytes, URL-safe encoded.
func RandomPassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
