package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/user"
)

type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type CreatePostRequest struct {
	Text       string   `json:"text"`
	MediaURLs  []string `json:"media_urls,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
}

// Create godoc
// @Summary Create a post
// @Description Publishes a new post. Only verified members can post, limited per day.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} Post
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(r.Context(), userID, CreateInput{
		Text:       req.Text,
		MediaURLs:  req.MediaURLs,
		Visibility: req.Visibility,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTextRequired), errors.Is(err, ErrTextTooLong), errors.Is(err, ErrInvalidVisibility):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrAuthorNotVerified):
			httputil.RespondErrorWithCode(w, "Only verified members can post", httputil.CodeNotVerified, http.StatusForbidden)
		case errors.Is(err, ErrDailyLimitReached):
			httputil.RespondErrorWithCode(w, "Daily post limit reached", httputil.CodePostLimitReached, http.StatusTooManyRequests)
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			h.logger.Error("failed to create post", "error", err, "user_id", userID)
			httputil.RespondErrorWithCode(w, "Failed to create post", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, p, http.StatusCreated)
}

// Feed godoc
// @Summary Get the community feed
// @Description Returns the latest posts with author info and like state.
// @Tags posts
// @Produce json
// @Success 200 {array} Post
// @Failure 401 {object} httputil.ErrorResponse
// @Router /posts/feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	posts, err := h.service.Feed(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load feed", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to load feed", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"posts": posts}, http.StatusOK)
}

// Like godoc
// @Summary Like a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httputil.ErrorResponse
// @Failure 409 {object} httputil.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid post ID", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.Like(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			httputil.RespondErrorWithCode(w, "Post not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAlreadyLiked):
			httputil.RespondErrorWithCode(w, "Post already liked", httputil.CodeAlreadyLiked, http.StatusConflict)
		default:
			h.logger.Error("failed to like post", "error", err, "post_id", postID, "user_id", userID)
			httputil.RespondErrorWithCode(w, "Failed to like post", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Post liked"}, http.StatusOK)
}

// Unlike godoc
// @Summary Remove a like from a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]string
// @Router /posts/{id}/like [delete]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid post ID", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.Unlike(r.Context(), postID, userID); err != nil {
		h.logger.Error("failed to unlike post", "error", err, "post_id", postID, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to unlike post", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Like removed"}, http.StatusOK)
}
