package service

import "errors"

var (
	// ErrInvalidFacilityID is returned when facility ID is empty.
	ErrInvalidFacilityID = errors.New("invalid facility id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidLocation is returned when search coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidFacilityStatus is returned when a listing filters on an unknown status.
	ErrInvalidFacilityStatus = errors.New("invalid facility status")

	// ErrInvalidBookingStatus is returned when a listing filters on an unknown booking status.
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	// ErrInvalidPaymentStatus is returned when a listing filters on an unknown payment status.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidBookingType is returned when a listing filters on an unknown booking type.
	ErrInvalidBookingType = errors.New("invalid booking type")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidLicensePlate is returned when the vehicle license plate is empty.
	ErrInvalidLicensePlate = errors.New("vehicle license plate is required")

	// ErrNoAvailability is returned when the facility has no free spots.
	ErrNoAvailability = errors.New("no parking spots available")

	// ErrInvalidInterval is returned when start time is not before end time.
	ErrInvalidInterval = errors.New("start time must be before end time")

	// ErrUnsupportedVehicleType is returned when the facility has no rate for the vehicle type.
	ErrUnsupportedVehicleType = errors.New("vehicle type not supported at this facility")

	// ErrInvalidStateTransition is returned when a booking cannot move to the requested status.
	ErrInvalidStateTransition = errors.New("booking cannot be cancelled in current state")

	// ErrForbidden is returned when the caller neither owns the resource nor is an admin.
	ErrForbidden = errors.New("not authorized to access this resource")

	// ErrUnauthenticated is returned when no principal accompanies a call that needs one.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidRating is returned when a review rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrReviewNotAllowed is returned when the user has no completed stay at the facility.
	ErrReviewNotAllowed = errors.New("you can only review facilities you have used")

	// ErrFacilityBusy is returned when the facility review lock cannot be taken.
	ErrFacilityBusy = errors.New("facility is being updated, please retry")

	// ErrBookingCodeExhausted is returned when no unique booking code could be generated.
	ErrBookingCodeExhausted = errors.New("could not generate a unique booking code")

	// ErrBookingFailed is returned when a booking could not be persisted as a unit.
	ErrBookingFailed = errors.New("booking could not be completed")

	// ErrBookingNotPayable is returned when charging a payment whose booking is no longer pending or confirmed.
	ErrBookingNotPayable = errors.New("booking is no longer awaiting payment")

	// ErrPaymentNotPending is returned when processing a payment that is already settled.
	ErrPaymentNotPending = errors.New("payment is not pending")
)
