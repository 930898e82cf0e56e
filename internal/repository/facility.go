package repository

import (
	"context"

	"parkride/internal/domain"
)

// FacilityRepository defines the persistence operations for parking facilities.
type FacilityRepository interface {
	// Create persists a new facility. Tariffs pricing a vehicle type twice
	// are rejected with domain.ErrDuplicateVehicleType.
	Create(ctx context.Context, facility *domain.Facility) error

	// GetByID retrieves a facility by ID.
	GetByID(ctx context.Context, id string) (*domain.Facility, error)

	// List returns one page of facilities matching filter, sorted by rating
	// descending, plus the total number of matches.
	List(ctx context.Context, filter domain.FacilityFilter, page Page) ([]*domain.Facility, int64, error)

	// FindInBox returns up to limit facilities with the given status inside box.
	FindInBox(ctx context.Context, box domain.BoundingBox, status domain.FacilityStatus, limit int) ([]*domain.Facility, error)

	// ReserveSpot atomically decrements available spots if any remain.
	// Returns ErrNoSpotsAvailable when none remain.
	ReserveSpot(ctx context.Context, id string) error

	// ReleaseSpot increments available spots unless already at capacity.
	ReleaseSpot(ctx context.Context, id string) error

	// SaveReviews replaces the review list and the derived rating.
	SaveReviews(ctx context.Context, id string, reviews []domain.Review, rating float64) error
}
