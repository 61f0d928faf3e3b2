// Package otp holds one-time email login codes.
//
// An entry is created by Store and consumed by the first matching Verify.
// Entries expire after the configured TTL; a wrong code leaves the entry in
// place so the user can retry until it expires.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DefaultTTL is how long a code stays valid.
const DefaultTTL = 10 * time.Minute

// Store keeps OTP codes keyed by email.
type Store interface {
	// Store overwrites any prior code for email.
	Store(ctx context.Context, email, code string) error
	// Verify consumes the code when it matches and has not expired.
	Verify(ctx context.Context, email, code string) (bool, error)
}

// Generate returns a cryptographically random 6-digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizeEmail is the key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
