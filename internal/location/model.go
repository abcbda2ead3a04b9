package location

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPincodeNotFound = errors.New("pincode not found")
	ErrInvalidPincode  = errors.New("pincode must be 6 digits")
)

// PincodeInfo is the coordinate record for an Indian postal code.
type PincodeInfo struct {
	Pincode   string  `json:"pincode"`
	City      string  `json:"city"`
	District  *string `json:"district,omitempty"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyPincode is a pincode annotated with its distance from a center.
type NearbyPincode struct {
	PincodeInfo
	DistanceKm float64 `json:"distance_km"`
}

type NearbyUser struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	Pincode    string    `json:"pincode"`
	Profession *string   `json:"profession,omitempty"`
	PhotoURL   *string   `json:"photo_url,omitempty"`
	DistanceKm float64   `json:"distance_km"`
	Distance   string    `json:"distance"`
}

type NearbyEvent struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	City      string    `json:"city"`
	EventDate time.Time `json:"event_date"`
	EventTime *string   `json:"event_time,omitempty"`
}
