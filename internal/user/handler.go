package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/logging"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CompleteProfileRequest represents the profile completion request body
type CompleteProfileRequest struct {
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Pincode     string  `json:"pincode"`
	Profession  *string `json:"profession,omitempty"`
	LineageNote *string `json:"lineage_note,omitempty"`
}

// CompleteProfile handles onboarding profile submission
// @Summary      Complete profile
// @Description  Store the onboarding profile and advance the account towards the vouching stage
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body CompleteProfileRequest true "Profile fields"
// @Success      200 {object} User
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /user/complete-profile [post]
func (h *Handler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid complete profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.CompleteProfile(r.Context(), userID, Profile{
		Name:        req.Name,
		City:        req.City,
		Pincode:     req.Pincode,
		Profession:  req.Profession,
		LineageNote: req.LineageNote,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNameTooShort),
			errors.Is(err, ErrCityRequired),
			errors.Is(err, ErrInvalidPincode),
			errors.Is(err, ErrLineageNoteTooLong):
			logger.Warn("profile completion failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		case errors.Is(err, ErrNotFound):
			logger.Warn("profile completion failed: user not found")
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("profile completion failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated successfully", "user_id", userID)

	httputil.RespondJSON(w, updated, http.StatusOK)
}
