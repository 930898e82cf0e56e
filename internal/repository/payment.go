package repository

import (
	"context"

	"parkride/internal/domain"
)

// PaymentFilter narrows a user's payment listing.
type PaymentFilter struct {
	Status      domain.PaymentStatus
	BookingType domain.BookingType
}

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByBooking retrieves the payment settling the referenced booking.
	GetByBooking(ctx context.Context, ref domain.BookingRef) (*domain.Payment, error)

	// Update persists status and refund changes of an existing payment,
	// provided it is still in status from. Returns ErrConflict otherwise.
	Update(ctx context.Context, payment *domain.Payment, from domain.PaymentStatus) error

	// ListByUser returns the user's payments newest first.
	ListByUser(ctx context.Context, userID string, filter PaymentFilter, page Page) ([]*domain.Payment, int64, error)
}
