package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parkride/internal/domain"
	"parkride/internal/service"
)

// BookingHandler handles HTTP requests for parking bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	FacilityID          string    `json:"facilityId" binding:"required"`
	StartTime           time.Time `json:"startTime" binding:"required"`
	EndTime             time.Time `json:"endTime" binding:"required"`
	VehicleType         string    `json:"vehicleType" binding:"required"`
	VehicleLicensePlate string    `json:"vehicleLicensePlate" binding:"required,max=20"`
	PaymentMethod       string    `json:"paymentMethod" binding:"required,oneof=card wallet cash upi"`
	SpecialInstructions string    `json:"specialInstructions" binding:"max=500"`
}

// CancelBookingRequest is the optional HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"max=500"`
}

// CreateBooking handles POST /api/parking/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		Principal:           p,
		FacilityID:          req.FacilityID,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		VehicleType:         req.VehicleType,
		VehicleLicensePlate: req.VehicleLicensePlate,
		PaymentMethod:       domain.PaymentMethod(req.PaymentMethod),
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"booking": toBookingResponse(result.Booking),
		"payment": toPaymentSummary(result.Payment),
	})
}

// GetBooking handles GET /api/parking/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"booking": toBookingResponse(booking)})
}

// CancelBooking handles PUT /api/parking/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	result, err := h.bookingService.CancelBooking(c.Request.Context(), service.CancelBookingRequest{
		Principal: p,
		BookingID: c.Param("id"),
		Reason:    req.CancellationReason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"booking":         toBookingResponse(result.Booking),
		"cancellationFee": result.CancellationFee,
		"refundAmount":    result.RefundAmount,
	})
}
