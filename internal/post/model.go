package post

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DailyPostLimit caps posts per author per UTC day.
const DailyPostLimit = 3

// Visibility values for a post.
const (
	VisibilityPublic      = "public"
	VisibilityMembersOnly = "members_only"
	VisibilityCityOnly    = "city_only"
)

const (
	TypeText  = "text"
	TypeImage = "image"
)

var (
	ErrTextRequired      = errors.New("post text is required")
	ErrTextTooLong       = errors.New("post text must be at most 5000 characters")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrAuthorNotVerified = errors.New("only verified users can create posts")
	ErrDailyLimitReached = errors.New("daily post limit reached")
	ErrAlreadyLiked      = errors.New("post already liked")
	ErrPostNotFound      = errors.New("post not found")
)

// Author is the embedded author view on feed items.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	PhotoURL *string   `json:"photo_url,omitempty"`
	City     string    `json:"city"`
}

type Post struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"author_id"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	MediaURLs     []string  `json:"media_urls,omitempty"`
	City          string    `json:"city"`
	Visibility    string    `json:"visibility"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`

	Author  *Author `json:"author,omitempty"`
	IsLiked bool    `json:"is_liked"`
}
