package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultKeyLength is the number of digits used for activation and reset keys.
const DefaultKeyLength = 20

// GenerateNumericKey returns a random numeric string of the given length,
// used for activation and password-reset keys.
func GenerateNumericKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	digits := make([]byte, length)
	for i, b := range buf {
		digits[i] = '0' + (b % 10)
	}

	return string(digits), nil
}

// GenerateRandomPassword returns a base64 URL-safe random string suitable as a
// throwaway password for admin-created accounts.
func GenerateRandomPassword(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
