package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// HashKey hashes an API key using bcrypt with cost 12.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(hash), nil
}

// CheckKey compares a plaintext key against a bcrypt hash.
func CheckKey(key, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}

// ValidHash reports whether hash looks like a bcrypt hash.
func ValidHash(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

// GenerateKey produces a cryptographically random API key
// (32 bytes, base64url-encoded, 43 characters).
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Keys holds the accepted API key in plaintext, hashed, or both.
// The zero value accepts every request.
type Keys struct {
	Plain string
	Hash  string
}

// Enabled reports whether any key is configured.
func (k Keys) Enabled() bool {
	return k.Plain != "" || k.Hash != ""
}

// Match reports whether provided matches one of the configured keys.
func (k Keys) Match(provided string) bool {
	if provided == "" {
		return false
	}
	if k.Plain != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(k.Plain)) == 1 {
		return true
	}
	return k.Hash != "" && CheckKey(provided, k.Hash) == nil
}
