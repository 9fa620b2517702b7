package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. The stored format is hex(derived) + "." + hex(salt),
// with a fresh random salt per hash.
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 1
	keyLen  = 64
	saltLen = 16
)

// HashPassword derives a salted scrypt hash of the password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	return hex.EncodeToString(derived) + "." + hex.EncodeToString(salt), nil
}

// CheckPassword reports whether the password matches the stored hash. The
// comparison is constant-time, and malformed stored hashes fail closed so
// the outcome is indistinguishable from a wrong password.
func CheckPassword(password, stored string) bool {
	derivedHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false
	}

	derived, err := hex.DecodeString(derivedHex)
	if err != nil || len(derived) != keyLen {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	candidate, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(candidate, derived) == 1
}
