package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/ratelimit"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service      *Service
	rateLimiter  *ratelimit.Limiter
	logger       *logging.Logger
	isProduction bool
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool) *Handler {
	return &Handler{
		service:      service,
		rateLimiter:  rateLimiter,
		logger:       logger,
		isProduction: isProduction,
	}
}

// SendOTPRequest represents the code request body
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest represents the code verification body
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse represents the verification response
type VerifyOTPResponse struct {
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"user_id"`
	IsNewUser bool      `json:"is_new_user"`
}

// SendOTP handles one-time code requests
// @Summary      Request a login code
// @Description  Send a 6-digit one-time code to the given email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SendOTPRequest true "Email address"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Invalid email"
// @Failure      429 {object} httputil.ErrorResponse "Rate limited"
// @Failure      500 {object} httputil.ErrorResponse "Delivery failure"
// @Router       /auth/send-otp [post]
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP on top of the per-identifier window inside the service
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "send_otp")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for send-otp", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid send-otp request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	// Resend cooldown between consecutive codes for the same address
	cooling, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if cooling {
		logger.Warn("send-otp failed: cooldown active")
		httputil.RespondErrorWithCode(w, "please wait before requesting another code", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "send_otp"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	if err := h.service.RequestCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrInvalidEmailFormat) {
			logger.Warn("send-otp failed: invalid email")
			httputil.RespondErrorWithCode(w, "invalid email address", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrRateLimited) {
			logger.Warn("send-otp failed: rate limited")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeRateLimited, http.StatusTooManyRequests)
			return
		}
		if errors.Is(err, ErrDeliveryFailed) {
			logger.Error("send-otp failed: delivery failure")
			httputil.RespondErrorWithCode(w, "failed to send verification code", httputil.CodeDeliveryFailed, http.StatusInternalServerError)
			return
		}
		logger.Error("send-otp failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to send verification code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	logger.Info("otp sent successfully")

	httputil.RespondJSON(w, map[string]string{"message": "verification code sent"}, http.StatusOK)
}

// VerifyOTP handles code verification
// @Summary      Verify a login code
// @Description  Verify the 6-digit code, create the account on first verification, and open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and code"
// @Success      200 {object} VerifyOTPResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired code"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify-otp request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if len(req.OTP) != 6 {
		logger.Warn("verify-otp failed: malformed code")
		httputil.RespondErrorWithCode(w, "code must be 6 digits", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.VerifyCode(r.Context(), req.Email, req.OTP, getClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			logger.Warn("verify-otp failed: invalid or expired code")
			httputil.RespondErrorWithCode(w, "invalid or expired code", httputil.CodeInvalidOTP, http.StatusBadRequest)
			return
		}
		logger.Error("verify-otp failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to verify code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	SetSessionCookie(w, result.Token, result.ExpiresAt, h.isProduction)

	logger.Info("otp verified successfully", "user_id", result.UserID, "is_new_user", result.IsNewUser)

	httputil.RespondJSON(w, VerifyOTPResponse{
		Message:   "verified successfully",
		UserID:    result.UserID,
		IsNewUser: result.IsNewUser,
	}, http.StatusOK)
}

// Logout handles session invalidation
// @Summary      Logout
// @Description  Invalidate the current session and clear the cookie. Idempotent.
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token, err := GetSessionTokenFromCookie(r)
	if err != nil || token == "" {
		// API clients present the token as a bearer header instead
		if parts := strings.Split(r.Header.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token != "" {
		if err := h.service.InvalidateSession(r.Context(), token); err != nil {
			logger.Warn("failed to invalidate session", "error", err.Error())
			// Continue - still clear the cookie
		}
	}

	ClearSessionCookie(w)

	logger.Info("user logged out")

	httputil.RespondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
