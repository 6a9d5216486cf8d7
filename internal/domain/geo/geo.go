package geo

import (
	"fmt"
	"math"
)

// Radius is a circular area around a point, in meters.
type Radius struct {
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// NewRadius validates and creates a Radius.
// Coordinates must be finite and in range, the radius finite and positive.
func NewRadius(lat, lng, radiusMeters float64) (Radius, error) {
	if !ValidateCoordinates(lat, lng) {
		return Radius{}, fmt.Errorf("invalid coordinates: lat=%v lng=%v", lat, lng)
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return Radius{}, fmt.Errorf("radius must be a positive number of meters, got %v", radiusMeters)
	}
	return Radius{Lat: lat, Lng: lng, RadiusMeters: radiusMeters}, nil
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN and infinities fail both range checks.
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
