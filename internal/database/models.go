package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the row model for community members.
// Rows are never hard-deleted; DeletedAt marks soft deletion.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email         string     `bun:"email,notnull,unique"`
	Phone         *string    `bun:"phone"`
	Name          string     `bun:"name,notnull,default:''"`
	City          string     `bun:"city,notnull,default:''"`
	Pincode       string     `bun:"pincode,notnull,default:''"`
	Profession    *string    `bun:"profession"`
	LineageNote   *string    `bun:"lineage_note"`
	PhotoURL      *string    `bun:"photo_url"`
	Status        string     `bun:"status,notnull,default:'created'"`
	TrustScore    float64    `bun:"trust_score,notnull,default:0"`
	EmailVerified bool       `bun:"email_verified,notnull,default:false"`
	PhoneVerified bool       `bun:"phone_verified,notnull,default:false"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:now()"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:now()"`
	DeletedAt     *time.Time `bun:"deleted_at"`
}

// OTPCode is an ephemeral one-time code. The code itself is stored only as a
// hex SHA-256 digest. ConsumedAt is set exactly once on successful verification.
type OTPCode struct {
	bun.BaseModel `bun:"table:otp_codes,alias:oc"`

	ID         int64      `bun:"id,pk,autoincrement"`
	UserID     *uuid.UUID `bun:"user_id,type:uuid"`
	Email      string     `bun:"email,notnull"`
	CodeHash   string     `bun:"code_hash,notnull"`
	Purpose    string     `bun:"purpose,notnull"` // login | email_verify
	ExpiresAt  time.Time  `bun:"expires_at,notnull"`
	ConsumedAt *time.Time `bun:"consumed_at"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:now()"`
}

// Session holds the hash of a bearer token; the raw token is never persisted.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         uuid.UUID `bun:"user_id,notnull,type:uuid"`
	TokenHash      string    `bun:"token_hash,notnull,unique"`
	IPAddress      string    `bun:"ip_address,notnull,default:''"`
	UserAgent      string    `bun:"user_agent,notnull,default:''"`
	ExpiresAt      time.Time `bun:"expires_at,notnull"`
	LastActivityAt time.Time `bun:"last_activity_at,notnull,default:now()"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:now()"`
}

// Vouch records one member's assertion about a candidate.
// (voucher_id, candidate_id) is unique.
type Vouch struct {
	bun.BaseModel `bun:"table:vouches,alias:v"`

	ID          int64     `bun:"id,pk,autoincrement"`
	VoucherID   uuid.UUID `bun:"voucher_id,notnull,type:uuid"`
	CandidateID uuid.UUID `bun:"candidate_id,notnull,type:uuid"`
	Decision    string    `bun:"decision,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()"`

	Voucher *User `bun:"rel:belongs-to,join:voucher_id=id"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid"`
	Type          string     `bun:"type,notnull"` // text | image
	Text          string     `bun:"text,notnull"`
	MediaURLs     []string   `bun:"media_urls,array"`
	City          string     `bun:"city,notnull,default:''"`
	Visibility    string     `bun:"visibility,notnull,default:'public'"`
	LikesCount    int        `bun:"likes_count,notnull,default:0"`
	CommentsCount int        `bun:"comments_count,notnull,default:0"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:now()"`
	DeletedAt     *time.Time `bun:"deleted_at"`

	Author *User `bun:"rel:belongs-to,join:author_id=id"`
}

// PostReaction is unique per (post_id, user_id).
type PostReaction struct {
	bun.BaseModel `bun:"table:post_reactions,alias:pr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	PostID    uuid.UUID `bun:"post_id,notnull,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Type      string    `bun:"type,notnull,default:'like'"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()"`
}

// Pincode maps an Indian postal code to coordinates.
type Pincode struct {
	bun.BaseModel `bun:"table:pincodes,alias:pc"`

	Pincode   string  `bun:"pincode,pk"`
	City      string  `bun:"city,notnull"`
	District  *string `bun:"district"`
	State     string  `bun:"state,notnull"`
	Latitude  float64 `bun:"latitude,notnull"`
	Longitude float64 `bun:"longitude,notnull"`
}

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title     string    `bun:"title,notnull"`
	City      string    `bun:"city,notnull"`
	EventDate time.Time `bun:"event_date,notnull"`
	EventTime *string   `bun:"event_time"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()"`
}
