package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey ContextKey = "user_id"
)

// SessionValidator resolves a bearer token to a user id.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (uuid.UUID, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	sessions SessionValidator
}

func NewMiddleware(sessions SessionValidator) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireSession validates the session token and places the resolved user id
// into the request context. Handlers receive an explicit user id, never an
// ambient "current user".
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetSessionTokenFromCookie(r)
			if err != nil {
				httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		userID, err := m.sessions.ValidateSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidSession) {
				httputil.RespondErrorWithCode(w, "invalid or expired session", httputil.CodeInvalidSession, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "failed to validate session", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}
