package handlers

import (
	"copool/internal/services"
	"copool/internal/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// GetPayment returns one rider's payment record with the UPI pay link
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	riderID, ok := pathObjectID(c, "rider_id")
	if !ok {
		return
	}

	detail, err := h.paymentService.GetPayment(c.Request.Context(), userID, currentUserRole(c), rideID, riderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", detail)
}

// ListPayments returns the records visible to the caller on a ride
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID, currentUserRole(c), rideID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Payments retrieved successfully", payments, &utils.Meta{
		Count: len(payments),
	})
}

// MarkPaid lets the rider report they have paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.MarkPaid(c.Request.Context(), userID, rideID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment marked done", nil)
}

// MarkReceived lets the giver confirm they received a rider's payment
func (h *PaymentHandler) MarkReceived(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	riderID, ok := pathObjectID(c, "rider_id")
	if !ok {
		return
	}

	if err := h.paymentService.MarkReceived(c.Request.Context(), userID, rideID, riderID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment marked received", nil)
}
