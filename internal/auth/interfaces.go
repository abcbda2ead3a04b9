package auth

import (
	"context"
	"time"
)

// OTPStore defines one-time code persistence.
type OTPStore interface {
	Insert(ctx context.Context, code *OTPCode) error
	// LatestActive returns the newest unconsumed, unexpired code for the
	// email, ordered by creation time with id as tie-break (newest wins).
	LatestActive(ctx context.Context, email string, now time.Time) (*OTPCode, error)
	// Consume sets consumed_at only if the row is still unconsumed and
	// reports whether this call won.
	Consume(ctx context.Context, id int64, at time.Time) (bool, error)
	CountSince(ctx context.Context, email string, since time.Time) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	Insert(ctx context.Context, session *Session) error
	GetActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*Session, error)
	TouchActivity(ctx context.Context, tokenHash string, at time.Time) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// OTPMailer delivers plaintext codes out of band.
type OTPMailer interface {
	SendOTPEmail(ctx context.Context, toEmail, code string, expiresIn time.Duration) error
}
