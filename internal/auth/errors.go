package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrRateLimited        = errors.New("too many requests")
	ErrDeliveryFailed     = errors.New("failed to send verification code")

	// ErrInvalidOTP covers every non-success verification outcome (no live
	// code, hash mismatch, already consumed) so callers cannot distinguish
	// whether an email is registered or a code ever existed.
	ErrInvalidOTP  = errors.New("invalid or expired code")
	ErrOTPNotFound = errors.New("otp code not found")

	// ErrInvalidSession is returned for both missing and expired sessions.
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionNotFound = errors.New("session not found")
)

// RateLimitedError carries the remaining-attempts count so the boundary can
// show a countdown. It matches ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RemainingAttempts int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests, please try again later (%d attempts remaining)", e.RemainingAttempts)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
