package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicateVehicleType is returned when a facility lists more than one rate for a vehicle type.
var ErrDuplicateVehicleType = errors.New("duplicate vehicle type rate")

// FacilityStatus represents the operational status of a parking facility.
type FacilityStatus string

const (
	FacilityStatusActive      FacilityStatus = "active"
	FacilityStatusInactive    FacilityStatus = "inactive"
	FacilityStatusMaintenance FacilityStatus = "maintenance"
)

// Valid reports whether s is a known facility status.
func (s FacilityStatus) Valid() bool {
	switch s {
	case FacilityStatusActive, FacilityStatusInactive, FacilityStatusMaintenance:
		return true
	}
	return false
}

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// VehicleTypeRate is the per-facility multiplier applied to the base rate for a vehicle category.
type VehicleTypeRate struct {
	VehicleType      string
	HourlyMultiplier float64
}

// Review is a single user's review of a facility. A facility holds at most one review per user.
type Review struct {
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// OperatingHours describes the opening window for one day of the week.
type OperatingHours struct {
	Day      string
	Open     string
	Close    string
	IsClosed bool
}

// Facility represents a parking location with a fixed spot capacity and tariff schedule.
type Facility struct {
	ID               string
	Name             string
	Address          string
	City             string
	State            string
	ZipCode          string
	Coordinates      Coordinates
	TotalSpots       int
	AvailableSpots   int // 0 <= AvailableSpots <= TotalSpots
	HourlyRate       float64
	DailyRate        float64
	Amenities        []string
	VehicleTypeRates []VehicleTypeRate
	Rating           float64 // derived from Reviews
	Reviews          []Review
	OperatingHours   []OperatingHours
	Status           FacilityStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VehicleRate returns the rate entry for the given vehicle type.
func (f *Facility) VehicleRate(vehicleType string) (VehicleTypeRate, bool) {
	for _, r := range f.VehicleTypeRates {
		if r.VehicleType == vehicleType {
			return r, true
		}
	}
	return VehicleTypeRate{}, false
}

// ValidateVehicleRates rejects tariffs that price the same vehicle type twice.
func (f *Facility) ValidateVehicleRates() error {
	seen := make(map[string]bool, len(f.VehicleTypeRates))
	for _, r := range f.VehicleTypeRates {
		if seen[r.VehicleType] {
			return fmt.Errorf("%w: %s", ErrDuplicateVehicleType, r.VehicleType)
		}
		seen[r.VehicleType] = true
	}
	return nil
}

// HasAmenities reports whether the facility offers every listed amenity.
func (f *Facility) HasAmenities(amenities []string) bool {
	for _, want := range amenities {
		found := false
		for _, have := range f.Amenities {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ReviewIndex returns the position of the user's review, or -1.
func (f *Facility) ReviewIndex(userID string) int {
	for i, r := range f.Reviews {
		if r.UserID == userID {
			return i
		}
	}
	return -1
}

// FacilityFilter narrows facility listings. Zero values mean "no constraint",
// except Status which callers default to active.
type FacilityFilter struct {
	Status      FacilityStatus
	City        string // case-insensitive substring
	Amenities   []string
	MinRating   float64
	VehicleType string
}

// Matches applies the filter to a single facility.
func (ff FacilityFilter) Matches(f *Facility) bool {
	if ff.Status != "" && f.Status != ff.Status {
		return false
	}
	if ff.City != "" && !strings.Contains(strings.ToLower(f.City), strings.ToLower(ff.City)) {
		return false
	}
	if len(ff.Amenities) > 0 && !f.HasAmenities(ff.Amenities) {
		return false
	}
	if ff.MinRating > 0 && f.Rating < ff.MinRating {
		return false
	}
	if ff.VehicleType != "" {
		if _, ok := f.VehicleRate(ff.VehicleType); !ok {
			return false
		}
	}
	return true
}

// BoundingBox is a rectangular coordinate window.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether c falls inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLng && c.Longitude <= b.MaxLng
}
