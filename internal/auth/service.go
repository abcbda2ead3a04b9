package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/logging"
)

// Directory is the slice of the user store the auth service needs to
// provision accounts on first verification.
type Directory interface {
	LookupEmail(ctx context.Context, email string) (id uuid.UUID, emailVerified bool, found bool, err error)
	ProvisionEmail(ctx context.Context, email string) (uuid.UUID, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// Service handles the OTP and session lifecycle
type Service struct {
	otpStore        OTPStore
	sessionStore    SessionStore
	directory       Directory
	mailer          OTPMailer
	logger          *logging.Logger
	otpExpiry       time.Duration
	otpWindow       time.Duration
	otpMaxRequests  int
	sessionDuration time.Duration
}

func NewService(
	otpStore OTPStore,
	sessionStore SessionStore,
	directory Directory,
	mailer OTPMailer,
	logger *logging.Logger,
	otpExpiry time.Duration,
	otpWindow time.Duration,
	otpMaxRequests int,
	sessionDuration time.Duration,
) *Service {
	return &Service{
		otpStore:        otpStore,
		sessionStore:    sessionStore,
		directory:       directory,
		mailer:          mailer,
		logger:          logger,
		otpExpiry:       otpExpiry,
		otpWindow:       otpWindow,
		otpMaxRequests:  otpMaxRequests,
		sessionDuration: sessionDuration,
	}
}

// CheckRateLimit counts codes issued for the identifier inside the trailing
// window. The check fails open: a store error is logged and treated as
// allowed, trading strictness for availability.
func (s *Service) CheckRateLimit(ctx context.Context, email string) RateLimitStatus {
	windowStart := time.Now().Add(-s.otpWindow)

	count, err := s.otpStore.CountSince(ctx, email, windowStart)
	if err != nil {
		s.logger.Warn("otp rate limit check failed, allowing request", "error", err.Error())
		return RateLimitStatus{Allowed: true, RemainingAttempts: s.otpMaxRequests}
	}

	remaining := s.otpMaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitStatus{
		Allowed:           count < s.otpMaxRequests,
		RemainingAttempts: remaining,
	}
}

// RequestCode generates, stores and emails a one-time code for the identifier.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}

	limit := s.CheckRateLimit(ctx, email)
	if !limit.Allowed {
		return &RateLimitedError{RemainingAttempts: limit.RemainingAttempts}
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	// Existing account: login. Unknown email: code doubles as email proof.
	purpose := PurposeEmailVerify
	var userID *uuid.UUID
	if id, _, found, err := s.directory.LookupEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	} else if found {
		purpose = PurposeLogin
		userID = &id
	}

	record := &OTPCode{
		UserID:    userID,
		Email:     email,
		CodeHash:  HashOTP(code),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.otpExpiry),
	}
	if err := s.otpStore.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	// A delivery failure after the insert leaves an orphaned row; it simply
	// expires unused.
	if err := s.mailer.SendOTPEmail(ctx, email, code, s.otpExpiry); err != nil {
		s.logger.Error("otp email delivery failed", "email", email, "error", err.Error())
		return ErrDeliveryFailed
	}

	s.logger.Info("otp issued", "email", email, "purpose", purpose)
	return nil
}

// VerifyCode validates the submitted code against the newest live code for
// the identifier, consumes it, provisions the account if the email is unseen,
// and opens a session.
func (s *Service) VerifyCode(ctx context.Context, email, submitted string, ip, userAgent string) (*VerifyResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	record, err := s.otpStore.LatestActive(ctx, email, now)
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to fetch code: %w", err)
	}

	submittedHash := HashOTP(submitted)
	if subtle.ConstantTimeCompare([]byte(submittedHash), []byte(record.CodeHash)) != 1 {
		return nil, ErrInvalidOTP
	}

	consumed, err := s.otpStore.Consume(ctx, record.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}
	if !consumed {
		// A concurrent verification got there first.
		return nil, ErrInvalidOTP
	}

	userID, emailVerified, found, err := s.directory.LookupEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	isNew := !found
	if isNew {
		userID, err = s.directory.ProvisionEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to create user account: %w", err)
		}
	} else if !emailVerified {
		if err := s.directory.MarkEmailVerified(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to mark email verified: %w", err)
		}
	}

	token, expiresAt, err := s.CreateSession(ctx, userID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("otp verified", "user_id", userID, "is_new_user", isNew)

	return &VerifyResult{
		UserID:    userID,
		IsNewUser: isNew,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// CreateSession issues an opaque bearer token. Only its hash is persisted;
// the raw token is returned to the caller exactly once.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, ip, userAgent string) (string, time.Time, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(s.sessionDuration)
	session := &Session{
		UserID:         userID,
		TokenHash:      hashToken(token),
		IPAddress:      ip,
		UserAgent:      userAgent,
		ExpiresAt:      expiresAt,
		LastActivityAt: now,
	}

	if err := s.sessionStore.Insert(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	return token, expiresAt, nil
}

// ValidateSession resolves a presented token to a user id and touches the
// session's last-activity time. Expired and unknown tokens fail identically.
func (s *Service) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	tokenHash := hashToken(token)
	now := time.Now()

	session, err := s.sessionStore.GetActiveByHash(ctx, tokenHash, now)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return uuid.Nil, ErrInvalidSession
		}
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.sessionStore.TouchActivity(ctx, tokenHash, now); err != nil {
		// The session itself is valid; a failed touch only loses telemetry.
		s.logger.Warn("failed to touch session activity", "error", err.Error())
	}

	return session.UserID, nil
}

// InvalidateSession deletes the session for the token. Idempotent.
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.sessionStore.DeleteByHash(ctx, hashToken(token))
}

// CleanupExpired removes expired codes and sessions. Intended for the
// periodic maintenance sweep, not the request path.
func (s *Service) CleanupExpired(ctx context.Context) error {
	now := time.Now()

	codes, err := s.otpStore.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clean up otp codes: %w", err)
	}

	sessions, err := s.sessionStore.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}

	if codes > 0 || sessions > 0 {
		s.logger.Info("expired auth records removed", "otp_codes", codes, "sessions", sessions)
	}

	return nil
}
