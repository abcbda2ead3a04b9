package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/abbasiconnect/api/internal/database"
)

// OTPRepository handles one-time code persistence
type OTPRepository struct {
	db *bun.DB
}

func NewOTPRepository(db *bun.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Insert(ctx context.Context, code *OTPCode) error {
	dbCode := &database.OTPCode{
		UserID:    code.UserID,
		Email:     code.Email,
		CodeHash:  code.CodeHash,
		Purpose:   code.Purpose,
		ExpiresAt: code.ExpiresAt,
	}

	_, err := r.db.NewInsert().
		Model(dbCode).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store otp code: %w", err)
	}

	code.ID = dbCode.ID
	code.CreatedAt = dbCode.CreatedAt
	return nil
}

// LatestActive selects the newest live code for the email. Older live codes
// are superseded by ordering, not by explicit revocation.
func (r *OTPRepository) LatestActive(ctx context.Context, email string, now time.Time) (*OTPCode, error) {
	dbCode := new(database.OTPCode)
	err := r.db.NewSelect().
		Model(dbCode).
		Where("lower(email) = lower(?)", email).
		Where("consumed_at IS NULL").
		Where("expires_at > ?", now).
		Order("created_at DESC", "id DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to get otp code: %w", err)
	}

	return mapDBOTPToModel(dbCode), nil
}

// Consume marks the code used. The consumed_at IS NULL guard makes the mark
// first-writer-wins under concurrent verification attempts.
func (r *OTPRepository) Consume(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := r.db.NewUpdate().
		Model((*database.OTPCode)(nil)).
		Set("consumed_at = ?", at).
		Where("id = ?", id).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *OTPRepository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.OTPCode)(nil)).
		Where("lower(email) = lower(?)", email).
		Where("created_at >= ?", since).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count otp codes: %w", err)
	}

	return count, nil
}

func (r *OTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.OTPCode)(nil)).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp codes: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected, nil
}

// SessionRepository handles session persistence
type SessionRepository struct {
	db *bun.DB
}

func NewSessionRepository(db *bun.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, session *Session) error {
	dbSession := &database.Session{
		UserID:         session.UserID,
		TokenHash:      session.TokenHash,
		IPAddress:      session.IPAddress,
		UserAgent:      session.UserAgent,
		ExpiresAt:      session.ExpiresAt,
		LastActivityAt: session.LastActivityAt,
	}

	_, err := r.db.NewInsert().
		Model(dbSession).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	session.ID = dbSession.ID
	session.CreatedAt = dbSession.CreatedAt
	return nil
}

func (r *SessionRepository) GetActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*Session, error) {
	dbSession := new(database.Session)
	err := r.db.NewSelect().
		Model(dbSession).
		Where("token_hash = ?", tokenHash).
		Where("expires_at > ?", now).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return mapDBSessionToModel(dbSession), nil
}

func (r *SessionRepository) TouchActivity(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*database.Session)(nil)).
		Set("last_activity_at = ?", at).
		Where("token_hash = ?", tokenHash).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch session activity: %w", err)
	}

	return nil
}

// DeleteByHash removes the session row. Deleting a missing row is not an error.
func (r *SessionRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("token_hash = ?", tokenHash).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected, nil
}

func mapDBOTPToModel(dbc *database.OTPCode) *OTPCode {
	return &OTPCode{
		ID:         dbc.ID,
		UserID:     dbc.UserID,
		Email:      dbc.Email,
		CodeHash:   dbc.CodeHash,
		Purpose:    dbc.Purpose,
		ExpiresAt:  dbc.ExpiresAt,
		ConsumedAt: dbc.ConsumedAt,
		CreatedAt:  dbc.CreatedAt,
	}
}

func mapDBSessionToModel(dbs *database.Session) *Session {
	return &Session{
		ID:             dbs.ID,
		UserID:         dbs.UserID,
		TokenHash:      dbs.TokenHash,
		IPAddress:      dbs.IPAddress,
		UserAgent:      dbs.UserAgent,
		ExpiresAt:      dbs.ExpiresAt,
		LastActivityAt: dbs.LastActivityAt,
		CreatedAt:      dbs.CreatedAt,
	}
}
