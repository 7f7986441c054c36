package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Parameters for the PBKDF2-SHA256 credential derivation.
const (
	// DefaultIterations is the PBKDF2 iteration count used when callers do
	// not override it. High enough to be deliberately slow.
	DefaultIterations = 100_000

	saltLength = 32 // Random bytes per salt
	keyLength  = 32 // Length of the derived key
)

// GenerateSalt returns a fresh hex-encoded random salt.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives a hex-encoded PBKDF2-SHA256 key from the plaintext
// password and the stored hex salt.
func HashPassword(password, salt string, iterations int) string {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword recomputes the derivation with the stored salt and compares
// it against the stored hash in constant time. Returns false for any mismatch
// or for missing salt/hash material; never compares plaintext.
func VerifyPassword(password, salt, encodedHash string, iterations int) bool {
	if salt == "" || encodedHash == "" {
		return false
	}
	computed := HashPassword(password, salt, iterations)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encodedHash)) == 1
}
