package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkride/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ProcessPayment handles POST /api/payments/:id/process
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"payment": toPaymentResponse(payment)})
}

// GetPayment handles GET /api/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"payment": toPaymentResponse(payment)})
}
