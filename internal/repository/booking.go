package repository

import (
	"context"

	"parkride/internal/domain"
)

// BookingRepository defines the persistence operations for parking bookings.
type BookingRepository interface {
	// Create persists a new booking. Returns ErrDuplicateKey on a booking code clash.
	Create(ctx context.Context, booking *domain.ParkingBooking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.ParkingBooking, error)

	// Delete removes a booking. Only used to compensate a failed creation.
	Delete(ctx context.Context, id string) error

	// ExistsByCode reports whether a booking code is already taken.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Transition moves a booking from one status to another, recording the
	// cancellation when given. Returns ErrConflict if the booking is no longer in from.
	Transition(ctx context.Context, id string, from, to domain.BookingStatus, cancellation *domain.Cancellation) error

	// SetPaymentStatus updates the booking's mirrored payment status. A non-empty
	// from restricts the update to bookings still mirroring that status and
	// yields ErrConflict otherwise.
	SetPaymentStatus(ctx context.Context, id string, from, to domain.BookingPaymentStatus) error

	// HasCompletedAtFacility reports whether the user has a checked-out booking at the facility.
	HasCompletedAtFacility(ctx context.Context, userID, facilityID string) (bool, error)

	// ListByUser returns the user's bookings newest first, optionally filtered by status.
	ListByUser(ctx context.Context, userID string, status domain.BookingStatus, page Page) ([]*domain.ParkingBooking, int64, error)
}
