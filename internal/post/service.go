package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/user"
)

const (
	maxTextLength = 5000
	feedLimit     = 50
)

type Service struct {
	store     Store
	users     user.Store
	sanitizer *bluemonday.Policy
	logger    *logging.Logger
}

func NewService(store Store, users user.Store, logger *logging.Logger) *Service {
	return &Service{
		store:     store,
		users:     users,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

type CreateInput struct {
	Text       string
	MediaURLs  []string
	Visibility string
}

// Create publishes a post for the given author. Only verified members can
// post, and each author is limited to DailyPostLimit posts per UTC day.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (*Post, error) {
	text := strings.TrimSpace(s.sanitizer.Sanitize(input.Text))
	if text == "" && len(input.MediaURLs) == 0 {
		return nil, ErrTextRequired
	}
	if len(text) > maxTextLength {
		return nil, ErrTextTooLong
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = VisibilityMembersOnly
	}
	switch visibility {
	case VisibilityPublic, VisibilityMembersOnly, VisibilityCityOnly:
	default:
		return nil, ErrInvalidVisibility
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("loading author: %w", err)
	}
	if author.Status != user.StatusVerified {
		return nil, ErrAuthorNotVerified
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := s.store.CountSince(ctx, authorID, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if count >= DailyPostLimit {
		return nil, ErrDailyLimitReached
	}

	postType := TypeText
	if len(input.MediaURLs) > 0 {
		postType = TypeImage
	}

	p := &Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Type:       postType,
		Text:       text,
		MediaURLs:  input.MediaURLs,
		City:       author.City,
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}

	s.logger.Info("post created",
		"post_id", p.ID,
		"author_id", authorID,
		"type", postType,
	)

	return p, nil
}

// Feed returns the latest posts with author info and the viewer's like state.
func (s *Service) Feed(ctx context.Context, viewerID uuid.UUID) ([]Post, error) {
	posts, err := s.store.Feed(ctx, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("loading feed: %w", err)
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	liked, err := s.store.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("loading reactions: %w", err)
	}

	for i := range posts {
		posts[i].IsLiked = liked[posts[i].ID]
	}

	return posts, nil
}

func (s *Service) Like(ctx context.Context, postID, userID uuid.UUID) error {
	exists, err := s.store.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("checking post: %w", err)
	}
	if !exists {
		return ErrPostNotFound
	}

	return s.store.InsertReaction(ctx, postID, userID)
}

// Unlike removes the user's like. Removing a like that does not exist is
// not an error.
func (s *Service) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	return s.store.DeleteReaction(ctx, postID, userID)
}
