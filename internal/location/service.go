package location

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abbasiconnect/api/internal/config"
	"github.com/abbasiconnect/api/internal/logging"
)

var pincodeRe = regexp.MustCompile(`^\d{6}$`)

type Service struct {
	store  Store
	cfg    config.LocationConfig
	logger *logging.Logger
}

func NewService(store Store, cfg config.LocationConfig, logger *logging.Logger) *Service {
	return &Service{store: store, cfg: cfg, logger: logger}
}

// PincodeCoordinates resolves a pincode to its coordinate record.
func (s *Service) PincodeCoordinates(ctx context.Context, pincode string) (*PincodeInfo, error) {
	if !pincodeRe.MatchString(pincode) {
		return nil, ErrInvalidPincode
	}
	return s.store.GetPincode(ctx, pincode)
}

// ValidatePincode reports whether the pincode is well-formed and known.
func (s *Service) ValidatePincode(ctx context.Context, pincode string) (bool, error) {
	if !pincodeRe.MatchString(pincode) {
		return false, nil
	}
	_, err := s.store.GetPincode(ctx, pincode)
	if err != nil {
		if err == ErrPincodeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NearbyPincodes lists pincodes within radiusKm of the given pincode,
// nearest first. A bounding box narrows candidates before the exact
// haversine filter.
func (s *Service) NearbyPincodes(ctx context.Context, pincode string, radiusKm float64) ([]NearbyPincode, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.DefaultRadiusKm
	}

	center, err := s.PincodeCoordinates(ctx, pincode)
	if err != nil {
		return nil, err
	}

	box := BoundingBoxAround(center.Latitude, center.Longitude, radiusKm)
	candidates, err := s.store.PincodesInBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pincodes: %w", err)
	}

	nearby := make([]NearbyPincode, 0, len(candidates))
	for _, c := range candidates {
		d := HaversineDistance(center.Latitude, center.Longitude, c.Latitude, c.Longitude)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, NearbyPincode{
			PincodeInfo: c,
			DistanceKm:  roundToTenth(d),
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	return nearby, nil
}

// NearbyUsers lists verified members whose profile pincode falls within
// radiusKm of the given pincode, nearest first. The requesting user is
// excluded from the results.
func (s *Service) NearbyUsers(ctx context.Context, requesterID uuid.UUID, pincode string, radiusKm float64, limit int) ([]NearbyUser, error) {
	if limit <= 0 || limit > s.cfg.NearbyUserLimit {
		limit = s.cfg.NearbyUserLimit
	}

	nearby, err := s.NearbyPincodes(ctx, pincode, radiusKm)
	if err != nil {
		return nil, err
	}

	distanceByPincode := make(map[string]float64, len(nearby))
	pincodes := make([]string, len(nearby))
	for i, n := range nearby {
		pincodes[i] = n.Pincode
		distanceByPincode[n.Pincode] = n.DistanceKm
	}

	users, err := s.store.VerifiedUsersInPincodes(ctx, pincodes, requesterID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("loading nearby users: %w", err)
	}

	for i := range users {
		d := distanceByPincode[users[i].Pincode]
		users[i].DistanceKm = d
		users[i].Distance = FormatDistance(d)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].DistanceKm < users[j].DistanceKm
	})

	return users, nil
}

// NearbyEvents lists upcoming events in cities covered by the nearby
// pincodes, soonest first.
func (s *Service) NearbyEvents(ctx context.Context, pincode string, radiusKm float64, limit int) ([]NearbyEvent, error) {
	if limit <= 0 || limit > s.cfg.NearbyEventLimit {
		limit = s.cfg.NearbyEventLimit
	}

	nearby, err := s.NearbyPincodes(ctx, pincode, radiusKm)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(nearby))
	cities := make([]string, 0, len(nearby))
	for _, n := range nearby {
		key := strings.ToLower(n.City)
		if seen[key] {
			continue
		}
		seen[key] = true
		cities = append(cities, n.City)
	}

	events, err := s.store.UpcomingEventsInCities(ctx, cities, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("loading nearby events: %w", err)
	}

	return events, nil
}

// CitySuggestions returns city names matching a prefix, for onboarding
// autocomplete.
func (s *Service) CitySuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	return s.store.CitySuggestions(ctx, query, limit)
}

// PincodesForCity lists the known pincodes of a city.
func (s *Service) PincodesForCity(ctx context.Context, city string) ([]PincodeInfo, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil
	}
	return s.store.PincodesForCity(ctx, city)
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
