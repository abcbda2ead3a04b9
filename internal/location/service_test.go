package location

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbasiconnect/api/internal/config"
	"github.com/abbasiconnect/api/internal/logging"
)

type fakeLocationStore struct {
	pincodes map[string]PincodeInfo
	users    map[string][]NearbyUser // keyed by pincode
	events   map[string][]NearbyEvent
}

func newFakeLocationStore() *fakeLocationStore {
	return &fakeLocationStore{
		pincodes: make(map[string]PincodeInfo),
		users:    make(map[string][]NearbyUser),
		events:   make(map[string][]NearbyEvent),
	}
}

func (s *fakeLocationStore) addPincode(pincode, city string, lat, lon float64) {
	s.pincodes[pincode] = PincodeInfo{
		Pincode: pincode, City: city, State: "Uttar Pradesh",
		Latitude: lat, Longitude: lon,
	}
}

func (s *fakeLocationStore) GetPincode(_ context.Context, pincode string) (*PincodeInfo, error) {
	info, ok := s.pincodes[pincode]
	if !ok {
		return nil, ErrPincodeNotFound
	}
	return &info, nil
}

func (s *fakeLocationStore) PincodesInBox(_ context.Context, box BoundingBox) ([]PincodeInfo, error) {
	var out []PincodeInfo
	for _, p := range s.pincodes {
		if p.Latitude >= box.MinLat && p.Latitude <= box.MaxLat &&
			p.Longitude >= box.MinLon && p.Longitude <= box.MaxLon {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeLocationStore) PincodesForCity(_ context.Context, city string) ([]PincodeInfo, error) {
	var out []PincodeInfo
	for _, p := range s.pincodes {
		if p.City == city {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeLocationStore) CitySuggestions(_ context.Context, query string, limit int) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.pincodes {
		if len(out) >= limit {
			break
		}
		if !seen[p.City] && len(query) <= len(p.City) && p.City[:len(query)] == query {
			seen[p.City] = true
			out = append(out, p.City)
		}
	}
	return out, nil
}

func (s *fakeLocationStore) VerifiedUsersInPincodes(_ context.Context, pincodes []string, excludeUserID string, limit int) ([]NearbyUser, error) {
	var out []NearbyUser
	for _, pc := range pincodes {
		for _, u := range s.users[pc] {
			if u.ID.String() == excludeUserID {
				continue
			}
			if len(out) >= limit {
				return out, nil
			}
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeLocationStore) UpcomingEventsInCities(_ context.Context, cities []string, after time.Time, limit int) ([]NearbyEvent, error) {
	var out []NearbyEvent
	for _, city := range cities {
		for _, e := range s.events[city] {
			if e.EventDate.Before(after) || len(out) >= limit {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func locationConfig() config.LocationConfig {
	return config.LocationConfig{DefaultRadiusKm: 50, NearbyUserLimit: 50, NearbyEventLimit: 20}
}

func newLocationFixture(t *testing.T) (*Service, *fakeLocationStore) {
	t.Helper()
	store := newFakeLocationStore()
	// Lucknow center plus two nearby and one far pincode.
	store.addPincode("226001", "Lucknow", 26.8467, 80.9462)
	store.addPincode("226010", "Lucknow", 26.8600, 81.0000)
	store.addPincode("208001", "Kanpur", 26.4499, 80.3319)
	store.addPincode("110001", "New Delhi", 28.6139, 77.2090)
	return NewService(store, locationConfig(), logging.NewLogger(true)), store
}

func TestPincodeCoordinates(t *testing.T) {
	service, _ := newLocationFixture(t)
	ctx := context.Background()

	info, err := service.PincodeCoordinates(ctx, "226001")
	require.NoError(t, err)
	assert.Equal(t, "Lucknow", info.City)

	_, err = service.PincodeCoordinates(ctx, "999999")
	assert.ErrorIs(t, err, ErrPincodeNotFound)

	for _, bad := range []string{"", "22600", "22600a", "2260011"} {
		_, err = service.PincodeCoordinates(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidPincode, "pincode %q", bad)
	}
}

func TestValidatePincode(t *testing.T) {
	service, _ := newLocationFixture(t)
	ctx := context.Background()

	ok, err := service.ValidatePincode(ctx, "226001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.ValidatePincode(ctx, "999999")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.ValidatePincode(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNearbyPincodesSortedByDistance(t *testing.T) {
	service, _ := newLocationFixture(t)
	ctx := context.Background()

	nearby, err := service.NearbyPincodes(ctx, "226001", 100)
	require.NoError(t, err)

	// Lucknow center, the second Lucknow pincode, and Kanpur; Delhi is far
	// outside the 100 km radius.
	require.Len(t, nearby, 3)
	assert.Equal(t, "226001", nearby[0].Pincode)
	assert.Equal(t, float64(0), nearby[0].DistanceKm)
	assert.Equal(t, "226010", nearby[1].Pincode)
	assert.Equal(t, "208001", nearby[2].Pincode)

	for i := 1; i < len(nearby); i++ {
		assert.GreaterOrEqual(t, nearby[i].DistanceKm, nearby[i-1].DistanceKm)
	}
}

func TestNearbyPincodesSmallRadius(t *testing.T) {
	service, _ := newLocationFixture(t)

	nearby, err := service.NearbyPincodes(context.Background(), "226001", 10)
	require.NoError(t, err)

	require.Len(t, nearby, 2)
	assert.Equal(t, "226001", nearby[0].Pincode)
	assert.Equal(t, "226010", nearby[1].Pincode)
}

func TestNearbyUsers(t *testing.T) {
	service, store := newLocationFixture(t)
	ctx := context.Background()

	requester := uuid.New()
	neighbour := uuid.New()
	store.users["226010"] = []NearbyUser{
		{ID: requester, Name: "Me", Pincode: "226010"},
		{ID: neighbour, Name: "Neighbour", Pincode: "226010"},
	}

	users, err := service.NearbyUsers(ctx, requester, "226001", 100, 0)
	require.NoError(t, err)

	// The requester never appears in their own results.
	require.Len(t, users, 1)
	assert.Equal(t, neighbour, users[0].ID)
	assert.Greater(t, users[0].DistanceKm, float64(0))
	assert.NotEmpty(t, users[0].Distance)
}

func TestNearbyEvents(t *testing.T) {
	service, store := newLocationFixture(t)
	ctx := context.Background()

	store.events["Kanpur"] = []NearbyEvent{
		{ID: uuid.New(), Title: "Community Iftar", City: "Kanpur", EventDate: time.Now().Add(48 * time.Hour)},
	}
	store.events["New Delhi"] = []NearbyEvent{
		{ID: uuid.New(), Title: "Annual Meetup", City: "New Delhi", EventDate: time.Now().Add(72 * time.Hour)},
	}

	events, err := service.NearbyEvents(ctx, "226001", 100, 0)
	require.NoError(t, err)

	// Delhi is outside the radius, so only the Kanpur event is returned.
	require.Len(t, events, 1)
	assert.Equal(t, "Community Iftar", events[0].Title)
}

func TestCitySuggestionsMinQuery(t *testing.T) {
	service, _ := newLocationFixture(t)
	ctx := context.Background()

	cities, err := service.CitySuggestions(ctx, "L", 10)
	require.NoError(t, err)
	assert.Empty(t, cities)

	cities, err = service.CitySuggestions(ctx, "Lu", 10)
	require.NoError(t, err)
	assert.Contains(t, cities, "Lucknow")
}
