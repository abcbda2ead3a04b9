package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	otpMin = 100000
	otpMax = 999999

	sessionTokenBytes = 64
)

// GenerateOTP returns a 6-digit code uniformly distributed over
// [100000, 999999] using crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// HashOTP returns the hex SHA-256 digest of a code. Codes are single-use and
// expire in minutes, so a plain digest is sufficient at rest.
func HashOTP(code string) string {
	return hashToken(code)
}

// generateSessionToken returns a 64-byte random bearer token as hex.
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the hex SHA-256 digest of a token. Only digests are
// persisted; the raw value leaves the process exactly once.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
