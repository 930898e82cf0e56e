package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationPaymentSuccess   NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationRefundIssued     NotificationType = "REFUND_ISSUED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Notifications are
// emitted as structured log events.
type NotificationService struct {
	log logrus.FieldLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(log logrus.FieldLogger) *NotificationService {
	return &NotificationService{log: log}
}

// NotifyBookingCreated tells the user their booking is reserved and awaiting payment.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, booking *domain.ParkingBooking, currency string) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingCreated,
		RecipientID: booking.UserID,
		Title:       "Booking Reserved",
		Message:     fmt.Sprintf("Booking %s reserved. Amount due: %s %.2f", booking.BookingCode, currency, booking.Price),
		Data: map[string]interface{}{
			"booking_id":   booking.ID,
			"booking_code": booking.BookingCode,
			"facility_id":  booking.FacilityID,
			"start_time":   booking.StartTime,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingConfirmed tells the user their paid booking is confirmed.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, booking *domain.ParkingBooking) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingConfirmed,
		RecipientID: booking.UserID,
		Title:       "Booking Confirmed",
		Message:     fmt.Sprintf("Booking %s is confirmed", booking.BookingCode),
		Data: map[string]interface{}{
			"booking_id":   booking.ID,
			"booking_code": booking.BookingCode,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingCancelled tells the user their booking was cancelled and what it cost.
func (s *NotificationService) NotifyBookingCancelled(ctx context.Context, booking *domain.ParkingBooking, fee, refund float64) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingCancelled,
		RecipientID: booking.UserID,
		Title:       "Booking Cancelled",
		Message:     fmt.Sprintf("Booking %s was cancelled. Fee: %.2f, refund: %.2f", booking.BookingCode, fee, refund),
		Data: map[string]interface{}{
			"booking_id":       booking.ID,
			"cancellation_fee": fee,
			"refund_amount":    refund,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSuccess notifies the user of a successful payment.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: payment.UserID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of %s %.2f was successful", payment.Currency, payment.Amount),
		Data: map[string]interface{}{
			"payment_id":     payment.ID,
			"transaction_id": payment.TransactionID,
			"amount":         payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed notifies the user of a failed payment.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: payment.UserID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of %s %.2f failed. Please try again.", payment.Currency, payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRefundIssued notifies the user that money is on its way back.
func (s *NotificationService) NotifyRefundIssued(ctx context.Context, payment *domain.Payment) error {
	if payment.Refund == nil {
		return nil
	}
	return s.send(ctx, Notification{
		Type:        NotificationRefundIssued,
		RecipientID: payment.UserID,
		Title:       "Refund Issued",
		Message:     fmt.Sprintf("A refund of %s %.2f has been issued", payment.Currency, payment.Refund.Amount),
		Data: map[string]interface{}{
			"payment_id":    payment.ID,
			"refund_amount": payment.Refund.Amount,
			"status":        payment.Status,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification by logging it.
func (s *NotificationService) send(ctx context.Context, n Notification) error {
	fields := logrus.Fields{
		"notification": n.Type,
		"recipient_id": n.RecipientID,
		"title":        n.Title,
	}
	for k, v := range n.Data {
		fields[k] = v
	}
	s.log.WithFields(fields).Info(n.Message)
	return nil
}
