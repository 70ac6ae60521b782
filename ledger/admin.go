package ledger

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for administrator secret verification.
	argon2Time        = 3
	argon2Memory      = 64 * 1024 // 64 MB
	argon2Parallelism = 4
	argon2KeyLen      = 32

	saltLen = 16
)

// AdminCredential holds the argon2id verifier for the ledger administrator's
// secret. Only the salt and derived key are retained; the secret itself is
// never stored.
type AdminCredential struct {
	Salt []byte
	Key  []byte
}

// NewAdminCredential derives a credential from the administrator secret.
func NewAdminCredential(secret string) (*AdminCredential, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("ledger: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)
	return &AdminCredential{Salt: salt, Key: key}, nil
}

// Verify reports whether the given secret matches the credential.
// Comparison is constant-time.
func (c *AdminCredential) Verify(secret string) bool {
	if c == nil || len(c.Salt) != saltLen || len(c.Key) != argon2KeyLen {
		return false
	}
	key := argon2.IDKey([]byte(secret), c.Salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)
	return subtle.ConstantTimeCompare(key, c.Key) == 1
}
