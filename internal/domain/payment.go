package domain

import (
	"fmt"
	"time"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusVoided            PaymentStatus = "voided" // pending charge abandoned by a cancellation
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded, PaymentStatusVoided:
		return true
	}
	return false
}

// PaymentMethod represents how the user pays.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodUPI    PaymentMethod = "upi"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCash, PaymentMethodUPI:
		return true
	}
	return false
}

// BookingType discriminates what a payment pays for.
type BookingType string

const (
	BookingTypeParking      BookingType = "parking"
	BookingTypeRide         BookingType = "ride"
	BookingTypeSubscription BookingType = "subscription"
)

// Valid reports whether t is a known booking type.
func (t BookingType) Valid() bool {
	switch t {
	case BookingTypeParking, BookingTypeRide, BookingTypeSubscription:
		return true
	}
	return false
}

// BookingRef identifies the booking a payment settles. Build it with
// ParkingRef, RideRef or SubscriptionRef.
type BookingRef struct {
	Type BookingType
	ID   string
}

// ParkingRef references a parking booking.
func ParkingRef(id string) BookingRef { return BookingRef{Type: BookingTypeParking, ID: id} }

// RideRef references a ride booking.
func RideRef(id string) BookingRef { return BookingRef{Type: BookingTypeRide, ID: id} }

// SubscriptionRef references a subscription.
func SubscriptionRef(id string) BookingRef {
	return BookingRef{Type: BookingTypeSubscription, ID: id}
}

// ParseBookingRef rebuilds a reference from its stored parts.
func ParseBookingRef(bookingType, id string) (BookingRef, error) {
	switch BookingType(bookingType) {
	case BookingTypeParking:
		return ParkingRef(id), nil
	case BookingTypeRide:
		return RideRef(id), nil
	case BookingTypeSubscription:
		return SubscriptionRef(id), nil
	}
	return BookingRef{}, fmt.Errorf("unknown booking type %q", bookingType)
}

func (r BookingRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// Refund is recorded on a payment only when money is returned.
type Refund struct {
	Amount     float64
	Reason     string
	RefundedAt time.Time
}

// Payment is the local record of a charge for a booking.
type Payment struct {
	ID            string
	UserID        string
	Amount        float64
	Currency      string
	PaymentMethod PaymentMethod
	Status        PaymentStatus
	Booking       BookingRef
	TransactionID string
	Refund        *Refund
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
