package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme selects how new credentials are encoded.
type Scheme string

const (
	// SchemeLegacy stores base64("username:password"). It is reversible and
	// kept only so existing user documents keep working.
	SchemeLegacy Scheme = "legacy"
	// SchemeBcrypt stores a bcrypt hash of the password.
	SchemeBcrypt Scheme = "bcrypt"
)

// ParseScheme validates a scheme name. The empty string selects SchemeLegacy.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeLegacy:
		return SchemeLegacy, nil
	case SchemeBcrypt:
		return SchemeBcrypt, nil
	default:
		return "", fmt.Errorf("unknown credential scheme %q", s)
	}
}

func (s Scheme) encode(username, password string) (string, error) {
	if s == SchemeBcrypt {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(h), nil
	}
	return legacyDigest(username, password), nil
}

// verifyCredential checks password against a stored digest of either scheme.
func verifyCredential(stored, username, password string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(legacyDigest(username, password))) == 1
}

func legacyDigest(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
