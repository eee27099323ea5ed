// Package auth holds the credential checks: customer PINs and the admin gate.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const PINLength = 4

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// PINHasher turns PINs into stored credentials and checks submissions against them.
type PINHasher struct {
	cost int
}

// NewPINHasher uses bcrypt.DefaultCost when cost is outside bcrypt's range.
func NewPINHasher(cost int) *PINHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PINHasher{cost: cost}
}

func (h *PINHasher) Hash(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether pin matches the stored credential. legacy is true
// when stored is a plain PIN from an older data file and should be rehashed.
func (h *PINHasher) Verify(stored, pin string) (ok, legacy bool) {
	if !IsHashed(stored) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)) == nil, false
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}
