// Package crypto derives the password fingerprint used to sign hidden messages
package crypto

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	FingerprintLength = 8
	MinPasswordLength = 4
	MaxPasswordLength = 256
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
)

// Fingerprint returns the first 8 hex characters of the MD5 digest of password.
// MD5 is kept for compatibility with images encoded by earlier releases; the
// fingerprint is a correctness check, not a secret.
func Fingerprint(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// ValidatePassword checks the password length in characters against minLength
// and MaxPasswordLength.
func ValidatePassword(password string, minLength int) error {
	n := len([]rune(password))
	if n < minLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrPasswordTooShort, minLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("%w: cannot exceed %d characters", ErrPasswordTooLong, MaxPasswordLength)
	}
	return nil
}
