package vouch

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/user"
)

// RequiredVouches is the quorum needed to promote a candidate to verified.
const RequiredVouches = 3

// Decision values. Only the first three count toward the quorum; the
// rejecting values are stored for the audit trail but never qualify.
const (
	DecisionKnowPersonally        = "know_personally"
	DecisionFamilyConnection      = "family_connection"
	DecisionCommunityAcquaintance = "community_acquaintance"
	DecisionDontKnow              = "dont_know"
	DecisionDeclined              = "declined"
)

var (
	ErrInvalidDecision    = errors.New("invalid vouch decision")
	ErrSelfVouch          = errors.New("cannot vouch for yourself")
	ErrDuplicateVouch     = errors.New("already vouched for this candidate")
	ErrVoucherNotVerified = errors.New("only verified members can vouch")
	ErrCandidateNotFound  = errors.New("candidate not found")
)

var qualifyingDecisions = map[string]bool{
	DecisionKnowPersonally:        true,
	DecisionFamilyConnection:      true,
	DecisionCommunityAcquaintance: true,
}

var knownDecisions = map[string]bool{
	DecisionKnowPersonally:        true,
	DecisionFamilyConnection:      true,
	DecisionCommunityAcquaintance: true,
	DecisionDontKnow:              true,
	DecisionDeclined:              true,
}

// IsQualifying reports whether a decision counts toward the quorum.
func IsQualifying(decision string) bool {
	return qualifyingDecisions[decision]
}

// IsKnownDecision reports whether a decision value is recognized at all.
func IsKnownDecision(decision string) bool {
	return knownDecisions[decision]
}

// Vouch is one member's assertion about a candidate.
type Vouch struct {
	ID          int64     `json:"id"`
	VoucherID   uuid.UUID `json:"voucher_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Decision    string    `json:"decision"`
	CreatedAt   time.Time `json:"created_at"`
}

// VoucherInfo is the display view of one qualifying vouch.
type VoucherInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	Decision  string    `json:"decision"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusResult is what a vouch status read returns.
type StatusResult struct {
	Status          user.Status   `json:"status"`
	TotalVouches    int           `json:"total_vouches"`
	RequiredVouches int           `json:"required_vouches"`
	Vouchers        []VoucherInfo `json:"vouchers"`
}
