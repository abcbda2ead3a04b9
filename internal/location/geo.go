package location

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineDistance returns the great-circle distance in kilometers between
// two coordinates.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BoundingBox is a rectangular pre-filter around a center point. One degree
// of latitude is roughly 111 km; longitude degrees shrink by cos(latitude).
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func BoundingBoxAround(lat, lon, radiusKm float64) BoundingBox {
	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Cos(toRadians(lat)))

	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

// FormatDistance renders a distance for display: meters under 1 km,
// otherwise kilometers with one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

func roundToTenth(km float64) float64 {
	return math.Round(km*10) / 10
}
