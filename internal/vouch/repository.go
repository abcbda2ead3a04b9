package vouch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/abbasiconnect/api/internal/database"
)

// Store defines vouch persistence as consumed by the service.
type Store interface {
	Insert(ctx context.Context, v *Vouch) error
	Exists(ctx context.Context, voucherID, candidateID uuid.UUID) (bool, error)
	ListQualifying(ctx context.Context, candidateID uuid.UUID) ([]VoucherInfo, error)
}

// Repository handles vouch persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a vouch. The unique index on (voucher_id, candidate_id)
// backs the duplicate check against races.
func (r *Repository) Insert(ctx context.Context, v *Vouch) error {
	dbVouch := &database.Vouch{
		VoucherID:   v.VoucherID,
		CandidateID: v.CandidateID,
		Decision:    v.Decision,
	}

	_, err := r.db.NewInsert().
		Model(dbVouch).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrDuplicateVouch
		}
		return fmt.Errorf("failed to store vouch: %w", err)
	}

	v.ID = dbVouch.ID
	v.CreatedAt = dbVouch.CreatedAt
	return nil
}

func (r *Repository) Exists(ctx context.Context, voucherID, candidateID uuid.UUID) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.Vouch)(nil)).
		Where("voucher_id = ?", voucherID).
		Where("candidate_id = ?", candidateID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing vouch: %w", err)
	}

	return count > 0, nil
}

// ListQualifying returns the display view of every qualifying vouch for the
// candidate, voucher profile included.
func (r *Repository) ListQualifying(ctx context.Context, candidateID uuid.UUID) ([]VoucherInfo, error) {
	var dbVouches []database.Vouch
	err := r.db.NewSelect().
		Model(&dbVouches).
		Relation("Voucher").
		Where("v.candidate_id = ?", candidateID).
		Where("v.decision IN (?)", bun.In([]string{
			DecisionKnowPersonally,
			DecisionFamilyConnection,
			DecisionCommunityAcquaintance,
		})).
		Order("v.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouches: %w", err)
	}

	infos := make([]VoucherInfo, 0, len(dbVouches))
	for _, v := range dbVouches {
		info := VoucherInfo{
			Decision:  v.Decision,
			CreatedAt: v.CreatedAt,
		}
		if v.Voucher != nil {
			info.ID = v.Voucher.ID
			info.Name = v.Voucher.Name
			info.PhotoURL = v.Voucher.PhotoURL
		}
		infos = append(infos, info)
	}

	return infos, nil
}
