package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/config"
	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/location"
	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/post"
	"github.com/abbasiconnect/api/internal/user"
	"github.com/abbasiconnect/api/internal/vouch"
)

// Handlers bundles the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Vouch    *vouch.Handler
	Post     *post.Handler
	Location *location.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		logger.Info("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-otp", h.Auth.SendOTP)
		r.Post("/verify-otp", h.Auth.VerifyOTP)
		r.Post("/logout", h.Auth.Logout)
	})

	// Location lookups used during onboarding (public)
	r.Get("/location/cities", h.Location.Cities)
	r.Get("/location/pincodes", h.Location.Pincodes)

	// Protected routes (require a valid session)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireSession)

		r.Post("/user/complete-profile", h.User.CompleteProfile)

		r.Route("/vouch", func(r chi.Router) {
			r.Get("/status", h.Vouch.Status)
			r.Post("/", h.Vouch.Submit)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/feed", h.Post.Feed)
			r.Post("/", h.Post.Create)
			r.Post("/{id}/like", h.Post.Like)
			r.Delete("/{id}/like", h.Post.Unlike)
		})

		r.Get("/location/nearby/users", h.Location.NearbyUsers)
		r.Get("/location/nearby/events", h.Location.NearbyEvents)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
