package service

import (
	"math"
	"testing"

	"parkride/internal/domain"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Coordinates
		want float64 // km
		tol  float64
	}{
		{
			name: "same point",
			a:    domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946},
			b:    domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946},
			want: 0,
			tol:  1e-9,
		},
		{
			name: "0.03 degrees of latitude",
			a:    domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946},
			b:    domain.Coordinates{Latitude: 13.0016, Longitude: 77.5946},
			want: 3.336,
			tol:  0.01,
		},
		{
			name: "Bangalore to Chennai",
			a:    domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946},
			b:    domain.Coordinates{Latitude: 13.0827, Longitude: 80.2707},
			want: 290,
			tol:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Haversine() = %v, want %v ± %v", got, tt.want, tt.tol)
			}
			if back := Haversine(tt.b, tt.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("Haversine() not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestSearchBox(t *testing.T) {
	origin := domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
	box := SearchBox(origin)

	inside := []domain.Coordinates{
		origin,
		{Latitude: origin.Latitude + 0.049, Longitude: origin.Longitude - 0.049},
	}
	outside := []domain.Coordinates{
		{Latitude: origin.Latitude + 0.06, Longitude: origin.Longitude},
		{Latitude: origin.Latitude, Longitude: origin.Longitude - 0.051},
	}

	for _, c := range inside {
		if !box.Contains(c) {
			t.Errorf("expected %+v inside %+v", c, box)
		}
	}
	for _, c := range outside {
		if box.Contains(c) {
			t.Errorf("expected %+v outside %+v", c, box)
		}
	}
}

func TestCoordinateRanges(t *testing.T) {
	if !isValidLatitude(-90) || !isValidLatitude(90) || isValidLatitude(90.1) {
		t.Error("latitude bounds are wrong")
	}
	if !isValidLongitude(-180) || !isValidLongitude(180) || isValidLongitude(-180.5) {
		t.Error("longitude bounds are wrong")
	}
}
