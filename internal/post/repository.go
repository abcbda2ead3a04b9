package post

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/abbasiconnect/api/internal/database"
)

// Store is the persistence surface the post service depends on.
type Store interface {
	Insert(ctx context.Context, p *Post) error
	CountSince(ctx context.Context, authorID uuid.UUID, since time.Time) (int, error)
	Feed(ctx context.Context, limit int) ([]Post, error)
	LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	InsertReaction(ctx context.Context, postID, userID uuid.UUID) error
	DeleteReaction(ctx context.Context, postID, userID uuid.UUID) error
	Exists(ctx context.Context, postID uuid.UUID) (bool, error)
}

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, p *Post) error {
	row := &database.Post{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		Type:       p.Type,
		Text:       p.Text,
		MediaURLs:  p.MediaURLs,
		City:       p.City,
		Visibility: p.Visibility,
		CreatedAt:  p.CreatedAt,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Exec(ctx)
	if err != nil {
		return err
	}

	p.ID = row.ID
	return nil
}

func (r *Repository) CountSince(ctx context.Context, authorID uuid.UUID, since time.Time) (int, error) {
	return r.db.NewSelect().
		Model((*database.Post)(nil)).
		Where("author_id = ?", authorID).
		Where("created_at >= ?", since).
		Where("deleted_at IS NULL").
		Count(ctx)
}

func (r *Repository) Feed(ctx context.Context, limit int) ([]Post, error) {
	var rows []database.Post
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Author").
		Where("p.deleted_at IS NULL").
		OrderExpr("p.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(rows))
	for _, row := range rows {
		p := Post{
			ID:            row.ID,
			AuthorID:      row.AuthorID,
			Type:          row.Type,
			Text:          row.Text,
			MediaURLs:     row.MediaURLs,
			City:          row.City,
			Visibility:    row.Visibility,
			LikesCount:    row.LikesCount,
			CommentsCount: row.CommentsCount,
			CreatedAt:     row.CreatedAt,
		}
		if row.Author != nil {
			p.Author = &Author{
				ID:       row.Author.ID,
				Name:     row.Author.Name,
				PhotoURL: row.Author.PhotoURL,
				City:     row.Author.City,
			}
		}
		posts = append(posts, p)
	}

	return posts, nil
}

func (r *Repository) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*database.PostReaction)(nil)).
		Column("post_id").
		Where("user_id = ?", userID).
		Where("post_id IN (?)", bun.In(postIDs)).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *Repository) InsertReaction(ctx context.Context, postID, userID uuid.UUID) error {
	row := &database.PostReaction{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(row).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrAlreadyLiked
		}
		return err
	}

	_, err = r.db.NewUpdate().
		Model((*database.Post)(nil)).
		Set("likes_count = likes_count + 1").
		Where("id = ?", postID).
		Exec(ctx)
	return err
}

func (r *Repository) DeleteReaction(ctx context.Context, postID, userID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*database.PostReaction)(nil)).
		Where("post_id = ?", postID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	_, err = r.db.NewUpdate().
		Model((*database.Post)(nil)).
		Set("likes_count = GREATEST(likes_count - 1, 0)").
		Where("id = ?", postID).
		Exec(ctx)
	return err
}

func (r *Repository) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Post)(nil)).
		Where("id = ?", postID).
		Where("deleted_at IS NULL").
		Exists(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return exists, nil
}
