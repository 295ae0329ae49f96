package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher is the pluggable password-hashing capability. The core
// never sees plaintext beyond the Compare call.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a CredentialHasher backed by bcrypt at default cost.
func NewBcryptHasher() CredentialHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(b), nil
}

func (h *bcryptHasher) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
