package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// LookupEmail reports whether an account exists for the email. Satisfies the
// auth service's Directory dependency.
func (r *Repository) LookupEmail(ctx context.Context, email string) (uuid.UUID, bool, bool, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, false, false, nil
		}
		return uuid.Nil, false, false, err
	}
	return u.ID, u.EmailVerified, true, nil
}

// ProvisionEmail creates the account for a freshly verified email.
func (r *Repository) ProvisionEmail(ctx context.Context, email string) (uuid.UUID, error) {
	u, err := r.Create(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}
