package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/abbasiconnect/api/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store defines user persistence as consumed by the services.
type Store interface {
	Create(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, id uuid.UUID, profile Profile, status Status) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user for a freshly verified email. The profile is
// filled in later during onboarding.
func (r *Repository) Create(ctx context.Context, email string) (*User, error) {
	dbUser := &database.User{
		Email:         strings.ToLower(email),
		Status:        string(StatusCreated),
		EmailVerified: true,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email (case-insensitive, soft-deleted excluded)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("lower(email) = lower(?)", email).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkEmailVerified sets the email_verified flag
func (r *Repository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateProfile writes the onboarding fields and the resulting status in one update
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, profile Profile, status Status) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("name = ?", profile.Name).
		Set("city = ?", profile.City).
		Set("pincode = ?", profile.Pincode).
		Set("profession = ?", profile.Profession).
		Set("lineage_note = ?", profile.LineageNote).
		Set("status = ?", string(status)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStatusIf moves the user from one status to another only if the row is
// still in the source status. Returns false when another writer won the race.
func (r *Repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(from)).
		Exec(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// SoftDelete marks the user deleted; rows are never removed
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("deleted_at = NOW()").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:            dbu.ID,
		Email:         dbu.Email,
		Phone:         dbu.Phone,
		Name:          dbu.Name,
		City:          dbu.City,
		Pincode:       dbu.Pincode,
		Profession:    dbu.Profession,
		LineageNote:   dbu.LineageNote,
		PhotoURL:      dbu.PhotoURL,
		Status:        Status(dbu.Status),
		TrustScore:    dbu.TrustScore,
		EmailVerified: dbu.EmailVerified,
		PhoneVerified: dbu.PhoneVerified,
		CreatedAt:     dbu.CreatedAt,
		UpdatedAt:     dbu.UpdatedAt,
		DeletedAt:     dbu.DeletedAt,
	}
}
