package routes

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/handlers"
)

func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, auth gin.HandlerFunc) {
	payments := r.Group("/payments")
	{
		payments.POST("/create-checkout-session", auth, paymentHandler.CreateCheckoutSession)

		// Authenticated by the provider signature, not a session token.
		payments.POST("/webhook", paymentHandler.Webhook)
	}
}
