package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

const maxWebhookBodyBytes = 1 << 20

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.CheckoutSessionRequest
	if !bindJSON(c, &request) {
		return
	}

	vehicleID, _ := validators.ParseObjectID(request.VehicleID)
	start, end, err := parseDates(request.StartDate, request.EndDate)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	session, err := h.paymentService.CreateCheckoutSession(c.Request.Context(), &services.CheckoutRequest{
		VehicleID: vehicleID,
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Checkout session created", gin.H{
		"url":        session.URL,
		"session_id": session.SessionID,
	})
}

// Webhook hands the untouched body to the provider for signature checks.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.BadRequestResponse(c, "unreadable webhook body")
		return
	}

	signature := c.GetHeader(h.paymentService.SignatureHeader())

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Webhook processed", result)
}
