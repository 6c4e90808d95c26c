package routes

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/handlers"
	"rentride/internal/middleware"
)

func SetupReviewRoutes(r *gin.RouterGroup, reviewHandler *handlers.ReviewHandler, auth gin.HandlerFunc) {
	reviews := r.Group("/reviews")
	{
		reviews.POST("", auth, reviewHandler.CreateReview)
		reviews.GET("/vehicle/:vehicleId", reviewHandler.ListVehicleReviews)
		reviews.GET("/booking/:bookingId", reviewHandler.ListBookingReviews)
		reviews.PATCH("/:id/approve", auth, middleware.AdminRequired(), reviewHandler.ApproveReview)
	}
}
