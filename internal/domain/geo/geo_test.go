package geo

import (
	"math"
	"testing"
)

func TestNewRadius_Valid(t *testing.T) {
	r, err := NewRadius(48.8566, 2.3522, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Lat != 48.8566 || r.Lng != 2.3522 || r.RadiusMeters != 5000 {
		t.Errorf("unexpected radius: %+v", r)
	}
}

func TestNewRadius_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		lat, lng, rad float64
	}{
		{"nan lat", math.NaN(), 0, 100},
		{"inf lng", 0, math.Inf(1), 100},
		{"lat out of range", 91, 0, 100},
		{"lng out of range", 0, -181, 100},
		{"zero radius", 0, 0, 0},
		{"negative radius", 0, 0, -5},
		{"nan radius", 0, 0, math.NaN()},
		{"inf radius", 0, 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRadius(tt.lat, tt.lng, tt.rad); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateCoordinates_Bounds(t *testing.T) {
	if !ValidateCoordinates(-90, -180) || !ValidateCoordinates(90, 180) {
		t.Error("boundary coordinates should be valid")
	}
}
