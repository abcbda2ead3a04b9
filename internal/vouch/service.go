package vouch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/user"
)

// Service implements vouch submission and the quorum-driven promotion of
// candidates from awaiting_vouches to verified.
type Service struct {
	vouches Store
	users   user.Store
	logger  *logging.Logger
}

func NewService(vouches Store, users user.Store, logger *logging.Logger) *Service {
	return &Service{vouches: vouches, users: users, logger: logger}
}

// Submit records a vouch by a verified member about a candidate.
func (s *Service) Submit(ctx context.Context, voucherID, candidateID uuid.UUID, decision string) (*Vouch, error) {
	if !IsKnownDecision(decision) {
		return nil, ErrInvalidDecision
	}
	if voucherID == candidateID {
		return nil, ErrSelfVouch
	}

	voucher, err := s.users.GetByID(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voucher: %w", err)
	}
	if voucher.Status != user.StatusVerified {
		return nil, ErrVoucherNotVerified
	}

	if _, err := s.users.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	exists, err := s.vouches.Exists(ctx, voucherID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing vouch: %w", err)
	}
	if exists {
		return nil, ErrDuplicateVouch
	}

	v := &Vouch{
		VoucherID:   voucherID,
		CandidateID: candidateID,
		Decision:    decision,
	}
	if err := s.vouches.Insert(ctx, v); err != nil {
		// The unique index catches the insert race the Exists check missed.
		return nil, err
	}

	s.logger.Info("vouch submitted",
		"voucher_id", voucherID,
		"candidate_id", candidateID,
		"decision", decision,
		"qualifying", IsQualifying(decision),
	)

	return v, nil
}

// Status reads the candidate's vouch progress and promotes the account to
// verified once the quorum is met. The promotion is a conditional update
// (only from awaiting_vouches), so concurrent readers apply it at most once;
// the loser of the race re-reads the committed status. A persistence failure
// is returned to the caller rather than reporting unverified state as
// verified.
func (s *Service) Status(ctx context.Context, candidateID uuid.UUID) (*StatusResult, error) {
	candidate, err := s.users.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	vouchers, err := s.vouches.ListQualifying(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vouches: %w", err)
	}

	status := candidate.Status
	total := len(vouchers)

	if total >= RequiredVouches && status == user.StatusAwaitingVouches {
		promoted, err := s.users.UpdateStatusIf(ctx, candidateID, user.StatusAwaitingVouches, user.StatusVerified)
		if err != nil {
			return nil, fmt.Errorf("failed to persist verification: %w", err)
		}
		if promoted {
			status = user.StatusVerified
			s.logger.Info("candidate auto-verified", "candidate_id", candidateID, "total_vouches", total)
		} else {
			// Lost the race; read back what the winner committed.
			refreshed, err := s.users.GetByID(ctx, candidateID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload candidate: %w", err)
			}
			status = refreshed.Status
		}
	}

	return &StatusResult{
		Status:          status,
		TotalVouches:    total,
		RequiredVouches: RequiredVouches,
		Vouchers:        vouchers,
	}, nil
}
