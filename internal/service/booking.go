package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
	"parkride/internal/redis"
	"parkride/internal/repository"
)

const (
	refundReasonCancelled = "Booking cancelled"

	// settleAttempts bounds re-reads when a payment changes under a cancellation.
	settleAttempts = 3
)

// BookingService handles the parking booking lifecycle.
type BookingService struct {
	facilityRepo        repository.FacilityRepository
	bookingRepo         repository.BookingRepository
	paymentRepo         repository.PaymentRepository
	cache               redis.FacilityCacheInterface
	notificationService *NotificationService
	log                 logrus.FieldLogger
	currency            string
	newCode             CodeGenerator
	now                 func() time.Time
}

// NewBookingService creates a new BookingService. cache may be nil.
func NewBookingService(
	facilityRepo repository.FacilityRepository,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	cache redis.FacilityCacheInterface,
	notificationService *NotificationService,
	log logrus.FieldLogger,
	currency string,
) *BookingService {
	return &BookingService{
		facilityRepo:        facilityRepo,
		bookingRepo:         bookingRepo,
		paymentRepo:         paymentRepo,
		cache:               cache,
		notificationService: notificationService,
		log:                 log,
		currency:            currency,
		newCode:             NewBookingCode,
		now:                 time.Now,
	}
}

// WithCodeGenerator replaces the booking code generator.
func (s *BookingService) WithCodeGenerator(gen CodeGenerator) *BookingService {
	s.newCode = gen
	return s
}

// WithClock replaces the time source used for fees and timestamps.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	Principal           domain.Principal
	FacilityID          string
	StartTime           time.Time
	EndTime             time.Time
	VehicleType         string
	VehicleLicensePlate string
	PaymentMethod       domain.PaymentMethod
	SpecialInstructions string
}

// CreateBookingResponse contains the booking and its pending payment.
type CreateBookingResponse struct {
	Booking *domain.ParkingBooking
	Payment *domain.Payment
}

// CreateBooking reserves a spot, records the booking and opens a pending payment.
// A failure after the spot is reserved releases it again before returning.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	facility, err := s.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}

	if facility.AvailableSpots <= 0 {
		return nil, ErrNoAvailability
	}

	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidInterval
	}

	price, err := PriceStay(facility, req.VehicleType, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	code, err := s.uniqueBookingCode(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.facilityRepo.ReserveSpot(ctx, facility.ID); err != nil {
		if errors.Is(err, repository.ErrNoSpotsAvailable) {
			return nil, ErrNoAvailability
		}
		return nil, err
	}
	invalidateFacility(ctx, s.cache, s.log, facility.ID)

	now := s.now()
	booking := &domain.ParkingBooking{
		ID:                  uuid.New().String(),
		UserID:              req.Principal.UserID,
		FacilityID:          facility.ID,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		VehicleType:         req.VehicleType,
		VehicleLicensePlate: req.VehicleLicensePlate,
		Price:               price,
		BookingStatus:       domain.BookingStatusPending,
		PaymentStatus:       domain.BookingPaymentPending,
		PaymentMethod:       req.PaymentMethod,
		BookingCode:         code,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.releaseSpot(ctx, facility.ID)
		return nil, fmt.Errorf("%w: save booking: %w", ErrBookingFailed, err)
	}

	payment, err := s.openPayment(ctx, booking)
	if err != nil {
		if delErr := s.bookingRepo.Delete(ctx, booking.ID); delErr != nil {
			// The booking stays behind without a payment; keep the spot held for it.
			s.log.WithError(delErr).WithFields(logrus.Fields{
				"booking_id":   booking.ID,
				"booking_code": booking.BookingCode,
				"orphaned":     true,
			}).Error("booking left without payment after failed compensation")
			return nil, fmt.Errorf("%w: create payment: %w; remove booking %s: %w", ErrBookingFailed, err, booking.ID, delErr)
		}
		s.releaseSpot(ctx, facility.ID)
		return nil, fmt.Errorf("%w: create payment: %w", ErrBookingFailed, err)
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingCreated(ctx, booking, s.currency)
	}

	return &CreateBookingResponse{
		Booking: booking,
		Payment: payment,
	}, nil
}

// validateCreateRequest validates the create booking request.
func (s *BookingService) validateCreateRequest(req CreateBookingRequest) error {
	if req.Principal.UserID == "" {
		return ErrUnauthenticated
	}

	if req.FacilityID == "" {
		return ErrInvalidFacilityID
	}

	if req.VehicleLicensePlate == "" {
		return ErrInvalidLicensePlate
	}

	if !req.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}

	return nil
}

// uniqueBookingCode draws codes until one is unused.
func (s *BookingService) uniqueBookingCode(ctx context.Context) (string, error) {
	for i := 0; i < maxBookingCodeTries; i++ {
		code := s.newCode()
		taken, err := s.bookingRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrBookingCodeExhausted
}

// openPayment records the pending payment for a new booking.
func (s *BookingService) openPayment(ctx context.Context, booking *domain.ParkingBooking) (*domain.Payment, error) {
	var err error
	for i := 0; i < maxBookingCodeTries; i++ {
		now := s.now()
		payment := &domain.Payment{
			ID:            uuid.New().String(),
			UserID:        booking.UserID,
			Amount:        booking.Price,
			Currency:      s.currency,
			PaymentMethod: booking.PaymentMethod,
			Status:        domain.PaymentStatusPending,
			Booking:       domain.ParkingRef(booking.ID),
			TransactionID: NewTransactionID(now),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = s.paymentRepo.Create(ctx, payment)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, err
		}
	}
	return nil, err
}

// releaseSpot gives a reserved spot back, logging rather than failing.
func (s *BookingService) releaseSpot(ctx context.Context, facilityID string) {
	if err := s.facilityRepo.ReleaseSpot(ctx, facilityID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).WithField("facility_id", facilityID).Error("failed to release parking spot")
		}
		return
	}
	invalidateFacility(ctx, s.cache, s.log, facilityID)
}

// GetBooking retrieves a booking visible to the principal.
func (s *BookingService) GetBooking(ctx context.Context, principal domain.Principal, bookingID string) (*domain.ParkingBooking, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !principal.CanAccess(booking.UserID) {
		return nil, ErrForbidden
	}

	return booking, nil
}

// CancelBookingRequest contains the parameters for cancelling a booking.
type CancelBookingRequest struct {
	Principal domain.Principal
	BookingID string
	Reason    string
}

// CancelBookingResponse contains the cancelled booking and its settlement.
type CancelBookingResponse struct {
	Booking         *domain.ParkingBooking
	CancellationFee float64
	RefundAmount    float64
}

// CancelBooking cancels a pending or confirmed booking, frees its spot and
// settles its payment: a completed payment is refunded less the fee, a pending
// one is voided.
func (s *BookingService) CancelBooking(ctx context.Context, req CancelBookingRequest) (*CancelBookingResponse, error) {
	booking, err := s.GetBooking(ctx, req.Principal, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !booking.BookingStatus.Cancellable() {
		return nil, ErrInvalidStateTransition
	}

	now := s.now()
	fee := CancellationFee(booking.Price, booking.StartTime, now)
	refund := RefundAmount(booking.Price, fee)
	cancellation := &domain.Cancellation{
		Reason:      req.Reason,
		Fee:         fee,
		CancelledAt: now,
	}

	err = s.bookingRepo.Transition(ctx, booking.ID, booking.BookingStatus, domain.BookingStatusCancelled, cancellation)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	booking.BookingStatus = domain.BookingStatusCancelled
	booking.Cancellation = cancellation
	booking.UpdatedAt = now

	s.releaseSpot(ctx, booking.FacilityID)

	if status, ok := s.settlePayment(ctx, booking, fee, now); ok {
		booking.PaymentStatus = status
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingCancelled(ctx, booking, fee, refund)
	}

	return &CancelBookingResponse{
		Booking:         booking,
		CancellationFee: fee,
		RefundAmount:    refund,
	}, nil
}

// settlePayment updates the payment of a cancelled booking and mirrors the
// outcome onto the booking. Failures are logged; the cancellation stands.
func (s *BookingService) settlePayment(ctx context.Context, booking *domain.ParkingBooking, fee float64, now time.Time) (domain.BookingPaymentStatus, bool) {
	logger := s.log.WithField("booking_id", booking.ID)

	for attempt := 0; attempt < settleAttempts; attempt++ {
		status, ok, err := s.settlePaymentOnce(ctx, booking, fee, now)
		if errors.Is(err, repository.ErrConflict) {
			// The payment moved, e.g. a charge landed; re-read and settle again.
			continue
		}
		if err != nil {
			logger.WithError(err).Error("failed to settle payment for cancelled booking")
			return "", false
		}
		return status, ok
	}

	logger.Error("payment kept changing while settling cancelled booking")
	return "", false
}

func (s *BookingService) settlePaymentOnce(ctx context.Context, booking *domain.ParkingBooking, fee float64, now time.Time) (domain.BookingPaymentStatus, bool, error) {
	payment, err := s.paymentRepo.GetByBooking(ctx, domain.ParkingRef(booking.ID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	from := payment.Status
	var mirrored, mirrorFrom domain.BookingPaymentStatus
	switch payment.Status {
	case domain.PaymentStatusCompleted:
		payment.Status = domain.PaymentStatusRefunded
		if fee > 0 {
			payment.Status = domain.PaymentStatusPartiallyRefunded
		}
		payment.Refund = &domain.Refund{
			Amount:     RefundAmount(booking.Price, fee),
			Reason:     refundReasonCancelled,
			RefundedAt: now,
		}
		mirrored = domain.BookingPaymentRefunded
	case domain.PaymentStatusPending:
		payment.Status = domain.PaymentStatusVoided
		mirrored = domain.BookingPaymentVoided
		// A charge reversed in the meantime may already have mirrored a refund.
		mirrorFrom = domain.BookingPaymentPending
	default:
		return "", false, nil
	}
	payment.UpdatedAt = now

	if err := s.paymentRepo.Update(ctx, payment, from); err != nil {
		return "", false, err
	}

	err = s.bookingRepo.SetPaymentStatus(ctx, booking.ID, mirrorFrom, mirrored)
	if errors.Is(err, repository.ErrConflict) {
		current, getErr := s.bookingRepo.GetByID(ctx, booking.ID)
		if getErr != nil {
			return "", false, getErr
		}
		return current.PaymentStatus, true, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Error("failed to update booking payment status")
		return "", false, nil
	}

	if payment.Refund != nil && s.notificationService != nil {
		_ = s.notificationService.NotifyRefundIssued(ctx, payment)
	}

	return mirrored, true, nil
}

// BookingPage is one page of a user's bookings.
type BookingPage struct {
	Bookings []*domain.ParkingBooking
	Page     repository.Page
	Total    int64
	Pages    int64
}

// ListUserBookings returns the principal's bookings newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, principal domain.Principal, status domain.BookingStatus, page repository.Page) (*BookingPage, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if status != "" && !status.Valid() {
		return nil, ErrInvalidBookingStatus
	}

	page = page.Normalize()
	bookings, total, err := s.bookingRepo.ListByUser(ctx, principal.UserID, status, page)
	if err != nil {
		return nil, err
	}

	return &BookingPage{
		Bookings: bookings,
		Page:     page,
		Total:    total,
		Pages:    page.Pages(total),
	}, nil
}
