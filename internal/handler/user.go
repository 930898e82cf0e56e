package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkride/internal/domain"
	"parkride/internal/repository"
	"parkride/internal/service"
)

// UserHandler handles HTTP requests for the caller's own records.
type UserHandler struct {
	bookingService *service.BookingService
	paymentService *service.PaymentService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(bookingService *service.BookingService, paymentService *service.PaymentService) *UserHandler {
	return &UserHandler{
		bookingService: bookingService,
		paymentService: paymentService,
	}
}

// UserBookingsQuery is the query string of a booking history listing.
type UserBookingsQuery struct {
	PageQuery
	Status string `form:"status"`
}

// UserPaymentsQuery is the query string of a payment history listing.
type UserPaymentsQuery struct {
	PageQuery
	Status      string `form:"status"`
	BookingType string `form:"bookingType"`
}

// ListBookings handles GET /api/users/bookings
func (h *UserHandler) ListBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q UserBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bookingService.ListUserBookings(c.Request.Context(), p, domain.BookingStatus(q.Status), q.toPage())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"bookings":   toBookingResponses(result.Bookings),
		"pagination": toPagination(result.Page, result.Total, result.Pages),
	})
}

// ListPayments handles GET /api/users/payments
func (h *UserHandler) ListPayments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q UserPaymentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.paymentService.ListUserPayments(c.Request.Context(), p, repository.PaymentFilter{
		Status:      domain.PaymentStatus(q.Status),
		BookingType: domain.BookingType(q.BookingType),
	}, q.toPage())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"payments":   toPaymentResponses(result.Payments),
		"pagination": toPagination(result.Page, result.Total, result.Pages),
	})
}
