package post

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/user"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *fakeUserStore) add(status user.Status, city string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &user.User{ID: id, Status: status, City: city, Name: "Member"}
	return id
}

func (s *fakeUserStore) Create(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user.User{ID: uuid.New(), Email: email, Status: user.StatusCreated}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, _ uuid.UUID) error { return nil }

func (s *fakeUserStore) UpdateProfile(_ context.Context, _ uuid.UUID, _ user.Profile, _ user.Status) error {
	return nil
}

func (s *fakeUserStore) UpdateStatusIf(_ context.Context, _ uuid.UUID, _, _ user.Status) (bool, error) {
	return false, nil
}

func (s *fakeUserStore) SoftDelete(_ context.Context, _ uuid.UUID) error { return nil }

type fakePostStore struct {
	mu        sync.Mutex
	posts     []*Post
	reactions map[uuid.UUID]map[uuid.UUID]bool
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{reactions: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (s *fakePostStore) Insert(_ context.Context, p *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
	return nil
}

func (s *fakePostStore) CountSince(_ context.Context, authorID uuid.UUID, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *fakePostStore) Feed(_ context.Context, limit int) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Post
	for i := len(s.posts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.posts[i])
	}
	return out, nil
}

func (s *fakePostStore) LikedPostIDs(_ context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked := make(map[uuid.UUID]bool)
	for _, id := range postIDs {
		if s.reactions[id][userID] {
			liked[id] = true
		}
	}
	return liked, nil
}

func (s *fakePostStore) InsertReaction(_ context.Context, postID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reactions[postID][userID] {
		return ErrAlreadyLiked
	}
	if s.reactions[postID] == nil {
		s.reactions[postID] = make(map[uuid.UUID]bool)
	}
	s.reactions[postID][userID] = true
	return nil
}

func (s *fakePostStore) DeleteReaction(_ context.Context, postID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reactions[postID], userID)
	return nil
}

func (s *fakePostStore) Exists(_ context.Context, postID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return true, nil
		}
	}
	return false, nil
}

func newPostFixture(t *testing.T) (*Service, *fakeUserStore, *fakePostStore) {
	t.Helper()
	users := newFakeUserStore()
	store := newFakePostStore()
	return NewService(store, users, logging.NewLogger(true)), users, store
}

func TestCreatePostOnlyVerified(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	for _, status := range []user.Status{
		user.StatusCreated, user.StatusPhoneVerified,
		user.StatusAwaitingVouches, user.StatusRestricted, user.StatusBanned,
	} {
		author := users.add(status, "Lucknow")
		_, err := service.Create(ctx, author, CreateInput{Text: "salaam"})
		assert.ErrorIs(t, err, ErrAuthorNotVerified, "status %s", status)
	}
}

func TestCreatePost(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Lucknow")

	p, err := service.Create(ctx, author, CreateInput{Text: "Eid Mubarak to everyone"})
	require.NoError(t, err)

	assert.Equal(t, author, p.AuthorID)
	assert.Equal(t, TypeText, p.Type)
	assert.Equal(t, "Eid Mubarak to everyone", p.Text)
	// The post inherits the author's city.
	assert.Equal(t, "Lucknow", p.City)
	assert.Equal(t, VisibilityMembersOnly, p.Visibility)
}

func TestCreatePostWithMedia(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")

	p, err := service.Create(ctx, author, CreateInput{
		Text:      "from the community iftar",
		MediaURLs: []string{"https://cdn.example.com/iftar.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, TypeImage, p.Type)
}

func TestCreatePostValidation(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")

	_, err := service.Create(ctx, author, CreateInput{Text: "   "})
	assert.ErrorIs(t, err, ErrTextRequired)

	_, err = service.Create(ctx, author, CreateInput{Text: strings.Repeat("x", 5001)})
	assert.ErrorIs(t, err, ErrTextTooLong)

	_, err = service.Create(ctx, author, CreateInput{Text: "hello", Visibility: "friends"})
	assert.ErrorIs(t, err, ErrInvalidVisibility)
}

func TestCreatePostSanitizesHTML(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")

	p, err := service.Create(ctx, author, CreateInput{
		Text: `hello <script>alert("x")</script><b>world</b>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, p.Text, "<script>")
	assert.NotContains(t, p.Text, "<b>")
	assert.Contains(t, p.Text, "hello")
	assert.Contains(t, p.Text, "world")
}

func TestCreatePostDailyLimit(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")

	for i := 0; i < DailyPostLimit; i++ {
		_, err := service.Create(ctx, author, CreateInput{Text: "post"})
		require.NoError(t, err)
	}

	_, err := service.Create(ctx, author, CreateInput{Text: "one too many"})
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	// The cap is per author.
	other := users.add(user.StatusVerified, "Delhi")
	_, err = service.Create(ctx, other, CreateInput{Text: "fresh quota"})
	assert.NoError(t, err)
}

func TestFeedMarksLikedPosts(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")
	viewer := users.add(user.StatusVerified, "Delhi")

	first, err := service.Create(ctx, author, CreateInput{Text: "first"})
	require.NoError(t, err)
	second, err := service.Create(ctx, author, CreateInput{Text: "second"})
	require.NoError(t, err)

	require.NoError(t, service.Like(ctx, first.ID, viewer))

	feed, err := service.Feed(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Newest first.
	assert.Equal(t, second.ID, feed[0].ID)
	assert.False(t, feed[0].IsLiked)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.True(t, feed[1].IsLiked)
}

func TestLikeUnlike(t *testing.T) {
	service, users, _ := newPostFixture(t)
	ctx := context.Background()

	author := users.add(user.StatusVerified, "Delhi")
	viewer := users.add(user.StatusVerified, "Delhi")

	p, err := service.Create(ctx, author, CreateInput{Text: "post"})
	require.NoError(t, err)

	require.NoError(t, service.Like(ctx, p.ID, viewer))
	assert.ErrorIs(t, service.Like(ctx, p.ID, viewer), ErrAlreadyLiked)

	// Unlike is idempotent.
	require.NoError(t, service.Unlike(ctx, p.ID, viewer))
	require.NoError(t, service.Unlike(ctx, p.ID, viewer))

	assert.ErrorIs(t, service.Like(ctx, uuid.New(), viewer), ErrPostNotFound)
}
