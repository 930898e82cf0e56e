package service

import (
	"math"

	"parkride/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// searchBoxDegrees is the half-width of the proximity pre-filter window.
	// It is not derived from the radius: facilities outside the window are
	// never returned, whatever the radius.
	searchBoxDegrees = 0.05
)

// Haversine returns the great-circle distance in kilometers between a and b.
func Haversine(a, b domain.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SearchBox returns the fixed pre-filter window centered on c.
func SearchBox(c domain.Coordinates) domain.BoundingBox {
	return domain.BoundingBox{
		MinLat: c.Latitude - searchBoxDegrees,
		MaxLat: c.Latitude + searchBoxDegrees,
		MinLng: c.Longitude - searchBoxDegrees,
		MaxLng: c.Longitude + searchBoxDegrees,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
