// Package password hashes and verifies login passwords.
//
// New hashes are always bcrypt. Verification additionally accepts the legacy
// pbkdf2_sha256$<iterations>$<salt>$<base64 key> format that older tenants
// still carry; a successful legacy match is reported with needsUpgrade=true
// so the caller can re-hash and persist the canonical form (write-on-read
// upgrade, no eager migration).
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	"github.com/maviontech/project-management/internal"
)

// DefaultCost is the bcrypt work factor for all newly produced hashes.
const DefaultCost = 12

const legacyPrefix = "pbkdf2_sha256$"

const (
	minLength = 8
)

type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a canonical bcrypt hash. This is the only format written.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash. needsUpgrade is true only
// when a legacy-format hash matched, so the caller can persist the canonical
// form. Malformed or empty stored values resolve to (false, false); bad
// stored data is never an error.
func (h *Hasher) Verify(plaintext, stored string) (matched, needsUpgrade bool) {
	if stored == "" {
		return false, false
	}

	if strings.HasPrefix(stored, legacyPrefix) {
		// upgrade only on a match; a failed attempt proves nothing about
		// the stored hash and must not trigger a rewrite
		matched := verifyLegacy(plaintext, stored)
		return matched, matched
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)); err != nil {
		return false, false
	}
	return true, false
}

// verifyLegacy validates against pbkdf2_sha256$<iterations>$<salt>$<b64 key>.
func verifyLegacy(plaintext, stored string) bool {
	parts := strings.SplitN(stored, "$", 4)
	if len(parts) != 4 {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt := parts[2]
	if salt == "" {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(plaintext), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// ValidateNew enforces the password policy for freshly chosen passwords:
// at least 8 characters and at least one digit. Checked before hashing.
func ValidateNew(plaintext string) error {
	if len(plaintext) < minLength {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeWeakPassword)
	}
	hasDigit := false
	for _, r := range plaintext {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return internal.NewValidationError("password must contain at least one number", internal.ErrCodeWeakPassword)
	}
	return nil
}

// Prefix returns a short non-reversible prefix of a stored hash, safe for
// diagnostics. Never log the full hash.
func Prefix(stored string) string {
	if len(stored) <= 10 {
		return stored
	}
	return stored[:10]
}
