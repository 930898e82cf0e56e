package domain

import "time"

// BookingStatus represents the lifecycle state of a parking booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked-in"
	BookingStatusCheckedOut BookingStatus = "checked-out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether a booking in this status may move to cancelled.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// BookingPaymentStatus mirrors the settlement state of the booking's payment.
type BookingPaymentStatus string

const (
	BookingPaymentPending  BookingPaymentStatus = "pending"
	BookingPaymentPaid     BookingPaymentStatus = "paid"
	BookingPaymentFailed   BookingPaymentStatus = "failed"
	BookingPaymentRefunded BookingPaymentStatus = "refunded"
	BookingPaymentVoided   BookingPaymentStatus = "voided"
)

// Cancellation is recorded on a booking only when it is cancelled.
type Cancellation struct {
	Reason      string
	Fee         float64
	CancelledAt time.Time
}

// ParkingBooking is a reservation of one spot at a facility for a time interval.
type ParkingBooking struct {
	ID                  string
	UserID              string
	FacilityID          string
	StartTime           time.Time
	EndTime             time.Time
	VehicleType         string
	VehicleLicensePlate string
	Price               float64
	BookingStatus       BookingStatus
	PaymentStatus       BookingPaymentStatus
	PaymentMethod       PaymentMethod
	BookingCode         string
	SpecialInstructions string
	Cancellation        *Cancellation
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Duration returns the booked interval length.
func (b *ParkingBooking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}
