package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// one-way salted password hashing
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// cost outside bcrypt's range falls back to DefaultBcryptCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}

		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(digest), nil
}

// reports whether plain matches digest; malformed digests never match.
// An empty digest (no such account, or no password on it) is compared
// against a throwaway digest of the same cost so it takes as long as a miss.
func (h *Hasher) Verify(plain, digest string) bool {
	if digest == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummyDigest(), []byte(plain))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

func (h *Hasher) dummyDigest() []byte {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("authgate-no-such-account"), h.cost)
	})

	return h.dummy
}
