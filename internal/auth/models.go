package auth

import (
	"time"

	"github.com/google/uuid"
)

// OTP purposes. login is issued when the email already belongs to a user,
// email_verify when it does not.
const (
	PurposeLogin       = "login"
	PurposeEmailVerify = "email_verify"
)

// OTPCode is the domain view of a stored one-time code.
type OTPCode struct {
	ID         int64
	UserID     *uuid.UUID
	Email      string
	CodeHash   string
	Purpose    string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *OTPCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Consumed reports whether the code has already been used.
func (c *OTPCode) Consumed() bool {
	return c.ConsumedAt != nil
}

// Session is the domain view of a stored session. TokenHash is the only form
// of the credential that survives creation.
type Session struct {
	ID             int64
	UserID         uuid.UUID
	TokenHash      string
	IPAddress      string
	UserAgent      string
	ExpiresAt      time.Time
	LastActivityAt time.Time
	CreatedAt      time.Time
}

// VerifyResult is returned by VerifyCode on success.
type VerifyResult struct {
	UserID    uuid.UUID
	IsNewUser bool
	Token     string
	ExpiresAt time.Time
}

// RateLimitStatus reports the outcome of an issuance window check.
type RateLimitStatus struct {
	Allowed           bool
	RemainingAttempts int
}
