package vouch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/logging"
)

// Handler contains HTTP handlers for vouch endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitRequest represents the vouch submission body
type SubmitRequest struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Decision    string    `json:"decision"`
}

// Submit handles vouch submission
// @Summary      Submit a vouch
// @Description  Record the caller's assertion about a candidate. Requires verified status.
// @Tags         vouch
// @Accept       json
// @Produce      json
// @Param        request body SubmitRequest true "Candidate and decision"
// @Success      201 {object} Vouch
// @Failure      400 {object} httputil.ErrorResponse "Invalid decision or self-vouch"
// @Failure      403 {object} httputil.ErrorResponse "Caller not verified"
// @Failure      404 {object} httputil.ErrorResponse "Candidate not found"
// @Failure      409 {object} httputil.ErrorResponse "Duplicate vouch"
// @Router       /vouch [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	voucherID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid vouch request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	v, err := h.service.Submit(r.Context(), voucherID, req.CandidateID, req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDecision):
			logger.Warn("vouch failed: invalid decision", "decision", req.Decision)
			httputil.RespondErrorWithCode(w, "invalid vouch decision", httputil.CodeInvalidDecision, http.StatusBadRequest)
		case errors.Is(err, ErrSelfVouch):
			logger.Warn("vouch failed: self-vouch")
			httputil.RespondErrorWithCode(w, "cannot vouch for yourself", httputil.CodeSelfVouch, http.StatusBadRequest)
		case errors.Is(err, ErrVoucherNotVerified):
			logger.Warn("vouch failed: voucher not verified")
			httputil.RespondErrorWithCode(w, "only verified members can vouch", httputil.CodeNotVerified, http.StatusForbidden)
		case errors.Is(err, ErrCandidateNotFound):
			logger.Warn("vouch failed: candidate not found")
			httputil.RespondErrorWithCode(w, "candidate not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrDuplicateVouch):
			logger.Warn("vouch failed: duplicate")
			httputil.RespondErrorWithCode(w, "already vouched for this candidate", httputil.CodeDuplicateVouch, http.StatusConflict)
		default:
			logger.Error("vouch failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to submit vouch", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("vouch recorded", "candidate_id", req.CandidateID)

	httputil.RespondJSON(w, v, http.StatusCreated)
}

// Status handles vouch status reads
// @Summary      Get vouch status
// @Description  Report the caller's vouch progress; promotes to verified when the quorum is reached
// @Tags         vouch
// @Produce      json
// @Success      200 {object} StatusResult
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /vouch/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	result, err := h.service.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrCandidateNotFound) {
			logger.Warn("vouch status failed: user not found")
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("vouch status failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to fetch vouch status", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, result, http.StatusOK)
}
