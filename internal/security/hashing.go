package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies tenant tracker tokens using bcrypt. Callers must
// not log or persist plaintext tokens.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Cost 10 is
// enough for machine-presented tokens; they are long and random, unlike
// passwords.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of token suitable for storage on the tenant row.
func (h *Hasher) Hash(token []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(token, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies token against the stored hash using constant-time
// comparison. Returns nil if they match; returns an error (including
// bcrypt.ErrMismatchedHashAndPassword) if they do not or on invalid hash.
func (h *Hasher) Compare(hash string, token []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), token)
}
