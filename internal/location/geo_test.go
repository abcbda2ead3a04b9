package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Lucknow GPO to Kanpur Central, roughly 79 km apart.
	d := HaversineDistance(26.8467, 80.9462, 26.4499, 80.3319)
	assert.InDelta(t, 75, d, 10)

	// Same point.
	assert.Zero(t, HaversineDistance(26.8467, 80.9462, 26.8467, 80.9462))

	// Delhi to Mumbai, roughly 1150 km.
	d = HaversineDistance(28.6139, 77.2090, 19.0760, 72.8777)
	assert.InDelta(t, 1150, d, 30)
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineDistance(26.8467, 80.9462, 28.6139, 77.2090)
	b := HaversineDistance(28.6139, 77.2090, 26.8467, 80.9462)
	assert.InDelta(t, a, b, 1e-9)
}

func TestBoundingBoxAround(t *testing.T) {
	box := BoundingBoxAround(26.8467, 80.9462, 50)

	assert.Less(t, box.MinLat, 26.8467)
	assert.Greater(t, box.MaxLat, 26.8467)
	assert.Less(t, box.MinLon, 80.9462)
	assert.Greater(t, box.MaxLon, 80.9462)

	// One degree of latitude is about 111 km, so a 50 km radius spans
	// roughly 0.45 degrees each way.
	assert.InDelta(t, 0.45, box.MaxLat-26.8467, 0.01)

	// Longitude degrees shrink away from the equator, so the box is wider
	// in longitude than in latitude.
	assert.Greater(t, box.MaxLon-80.9462, box.MaxLat-26.8467)
}

func TestBoundingBoxContainsPointsWithinRadius(t *testing.T) {
	centerLat, centerLon := 26.8467, 80.9462
	box := BoundingBoxAround(centerLat, centerLon, 50)

	// A point 40 km north of center must fall inside the box.
	northLat := centerLat + 40.0/111.0
	assert.GreaterOrEqual(t, box.MaxLat, northLat)

	d := HaversineDistance(centerLat, centerLon, northLat, centerLon)
	assert.InDelta(t, 40, d, 1)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500 m", FormatDistance(0.5))
	assert.Equal(t, "999 m", FormatDistance(0.999))
	assert.Equal(t, "1.0 km", FormatDistance(1.0))
	assert.Equal(t, "2.5 km", FormatDistance(2.54))
	assert.Equal(t, "79.0 km", FormatDistance(79.01))
}

func TestRoundToTenth(t *testing.T) {
	assert.Equal(t, 1.2, roundToTenth(1.24))
	assert.Equal(t, 1.3, roundToTenth(1.25))
	assert.Equal(t, 0.0, roundToTenth(0.04))
}
