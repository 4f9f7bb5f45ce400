package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters are shared between HashPassword and VerifyPassword.
// Changing any of them invalidates every stored hash, so treat them as part
// of the storage format.
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// HashPassword derives a 32-byte key from the password with a fresh random
// 16-byte salt. The same password hashed twice yields different outputs.
func HashPassword(password string) (hash []byte, salt []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}

	hash = pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hash, salt, nil
}

// VerifyPassword re-derives the key for the candidate password and compares
// it to the stored hash in constant time. Any length mismatch is reported as
// a plain non-match, never an error.
func VerifyPassword(password string, hash []byte, salt []byte) bool {
	candidate := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
