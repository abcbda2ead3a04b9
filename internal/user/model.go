package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	Name          string     `json:"name"`
	City          string     `json:"city"`
	Pincode       string     `json:"pincode"`
	Profession    *string    `json:"profession,omitempty"`
	LineageNote   *string    `json:"lineage_note,omitempty"`
	PhotoURL      *string    `json:"photo_url,omitempty"`
	Status        Status     `json:"status"`
	TrustScore    float64    `json:"trust_score"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

// Profile carries the fields supplied during onboarding.
type Profile struct {
	Name        string
	City        string
	Pincode     string
	Profession  *string
	LineageNote *string
}
