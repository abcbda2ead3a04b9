package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/logging"
)

var (
	ErrNameTooShort       = errors.New("name must be at least 2 characters")
	ErrCityRequired       = errors.New("city is required")
	ErrInvalidPincode     = errors.New("invalid pincode")
	ErrLineageNoteTooLong = errors.New("lineage note must be less than 500 characters")
)

var pincodeRe = regexp.MustCompile(`^\d{6}$`)

// Service handles profile business logic
type Service struct {
	repo   Store
	logger *logging.Logger
}

func NewService(repo Store, logger *logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// CompleteProfile validates and stores the onboarding fields, then advances
// the account from created through phone_verified into awaiting_vouches so the
// vouch workflow always finds the state it expects. Re-running for a user who
// already moved on updates the fields and keeps the current status.
func (s *Service) CompleteProfile(ctx context.Context, id uuid.UUID, profile Profile) (*User, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.City = strings.TrimSpace(profile.City)
	profile.Pincode = strings.TrimSpace(profile.Pincode)

	if len(profile.Name) < 2 {
		return nil, ErrNameTooShort
	}
	if profile.City == "" {
		return nil, ErrCityRequired
	}
	if !pincodeRe.MatchString(profile.Pincode) {
		return nil, ErrInvalidPincode
	}
	if profile.LineageNote != nil && len(*profile.LineageNote) > 500 {
		return nil, ErrLineageNoteTooLong
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := current.Status
	if status == StatusCreated {
		// Walk both onboarding hops through the transition table.
		status, err = status.Transition(StatusPhoneVerified)
		if err != nil {
			return nil, err
		}
		status, err = status.Transition(StatusAwaitingVouches)
		if err != nil {
			return nil, err
		}
	} else if status == StatusPhoneVerified {
		status, err = status.Transition(StatusAwaitingVouches)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateProfile(ctx, id, profile, status); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("profile completed", "user_id", id, "status", status)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return updated, nil
}
