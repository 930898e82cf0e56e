package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, payment *domain.Payment) (bool, error)
	Refund(ctx context.Context, payment *domain.Payment, amount float64) error
}

// MockPSP is a mock implementation of PSP. It always succeeds.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge simulates a payment charge.
func (p *MockPSP) Charge(ctx context.Context, payment *domain.Payment) (bool, error) {
	return true, nil
}

// Refund simulates returning money to the payer.
func (p *MockPSP) Refund(ctx context.Context, payment *domain.Payment, amount float64) error {
	return nil
}

// PaymentService handles payment operations.
type PaymentService struct {
	paymentRepo         repository.PaymentRepository
	bookingRepo         repository.BookingRepository
	psp                 PSP
	notificationService *NotificationService
	log                 logrus.FieldLogger
	now                 func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	psp PSP,
	notificationService *NotificationService,
	log logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:         paymentRepo,
		bookingRepo:         bookingRepo,
		psp:                 psp,
		notificationService: notificationService,
		log:                 log,
		now:                 time.Now,
	}
}

// ProcessPayment charges a pending payment through the PSP. A successful
// charge of a parking payment also confirms its booking. Parking payments
// are only charged while the booking is pending or confirmed.
func (s *PaymentService) ProcessPayment(ctx context.Context, principal domain.Principal, paymentID string) (*domain.Payment, error) {
	payment, err := s.GetPayment(ctx, principal, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != domain.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	if payment.Booking.Type == domain.BookingTypeParking {
		booking, err := s.bookingRepo.GetByID(ctx, payment.Booking.ID)
		if err != nil {
			return nil, err
		}
		if !booking.BookingStatus.Cancellable() {
			return nil, ErrBookingNotPayable
		}
	}

	success, err := s.psp.Charge(ctx, payment)
	if err != nil {
		s.log.WithError(err).WithField("payment_id", payment.ID).Warn("charge failed")
		success = false
	}

	payment.UpdatedAt = s.now()
	bookingStatus := domain.BookingPaymentFailed
	if success {
		payment.Status = domain.PaymentStatusCompleted
		bookingStatus = domain.BookingPaymentPaid
	} else {
		payment.Status = domain.PaymentStatusFailed
	}

	if err := s.paymentRepo.Update(ctx, payment, domain.PaymentStatusPending); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		// Settled while the charge was in flight, usually voided by a cancellation.
		if success {
			s.reverseCharge(ctx, payment)
		}
		return nil, ErrPaymentNotPending
	}

	if payment.Booking.Type == domain.BookingTypeParking {
		if err := s.settleBooking(ctx, payment.Booking.ID, bookingStatus, success); err != nil {
			return nil, err
		}
	}

	if s.notificationService != nil {
		if success {
			_ = s.notificationService.NotifyPaymentSuccess(ctx, payment)
		} else {
			_ = s.notificationService.NotifyPaymentFailed(ctx, payment)
		}
	}

	return payment, nil
}

// settleBooking mirrors the charge outcome onto the parking booking. A booking
// whose mirror moved on in the meantime, e.g. refunded by a cancellation, is left alone.
func (s *PaymentService) settleBooking(ctx context.Context, bookingID string, status domain.BookingPaymentStatus, confirm bool) error {
	err := s.bookingRepo.SetPaymentStatus(ctx, bookingID, domain.BookingPaymentPending, status)
	if errors.Is(err, repository.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	if !confirm {
		return nil
	}

	err = s.bookingRepo.Transition(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusConfirmed, nil)
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return err
	}

	if err == nil && s.notificationService != nil {
		if booking, getErr := s.bookingRepo.GetByID(ctx, bookingID); getErr == nil {
			_ = s.notificationService.NotifyBookingConfirmed(ctx, booking)
		}
	}
	return nil
}

// reverseCharge returns a charge that could not be recorded because the
// payment left pending while the PSP call was in flight. A payment voided by
// a cancellation is then recorded as fully refunded.
func (s *PaymentService) reverseCharge(ctx context.Context, charged *domain.Payment) {
	logger := s.log.WithField("payment_id", charged.ID)

	if err := s.psp.Refund(ctx, charged, charged.Amount); err != nil {
		logger.WithError(err).Error("failed to reverse unrecorded charge")
		return
	}

	current, err := s.paymentRepo.GetByID(ctx, charged.ID)
	if err != nil {
		logger.WithError(err).Error("failed to reload payment after reversing charge")
		return
	}
	if current.Status != domain.PaymentStatusVoided {
		logger.WithField("status", current.Status).Warn("reversed duplicate charge")
		return
	}

	now := s.now()
	current.Status = domain.PaymentStatusRefunded
	current.Refund = &domain.Refund{
		Amount:     current.Amount,
		Reason:     refundReasonCancelled,
		RefundedAt: now,
	}
	current.UpdatedAt = now
	if err := s.paymentRepo.Update(ctx, current, domain.PaymentStatusVoided); err != nil {
		logger.WithError(err).Error("failed to record refund of reversed charge")
		return
	}

	if current.Booking.Type == domain.BookingTypeParking {
		if err := s.bookingRepo.SetPaymentStatus(ctx, current.Booking.ID, "", domain.BookingPaymentRefunded); err != nil {
			logger.WithError(err).Error("failed to update booking payment status")
		}
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyRefundIssued(ctx, current)
	}
}

// GetPayment retrieves a payment visible to the principal.
func (s *PaymentService) GetPayment(ctx context.Context, principal domain.Principal, paymentID string) (*domain.Payment, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !principal.CanAccess(payment.UserID) {
		return nil, ErrForbidden
	}

	return payment, nil
}

// PaymentPage is one page of a user's payments.
type PaymentPage struct {
	Payments []*domain.Payment
	Page     repository.Page
	Total    int64
	Pages    int64
}

// ListUserPayments returns the principal's payments newest first.
func (s *PaymentService) ListUserPayments(ctx context.Context, principal domain.Principal, filter repository.PaymentFilter, page repository.Page) (*PaymentPage, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	if filter.BookingType != "" && !filter.BookingType.Valid() {
		return nil, ErrInvalidBookingType
	}

	page = page.Normalize()
	payments, total, err := s.paymentRepo.ListByUser(ctx, principal.UserID, filter, page)
	if err != nil {
		return nil, err
	}

	return &PaymentPage{
		Payments: payments,
		Page:     page,
		Total:    total,
		Pages:    page.Pages(total),
	}, nil
}
