package routes

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/handlers"
)

func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, auth gin.HandlerFunc) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("/:vehicleId", bookingHandler.ListVehicleBookings)

		bookings.POST("", auth, bookingHandler.CreateBooking)
		bookings.PUT("/:vehicleId/:bookingId", auth, bookingHandler.UpdateBooking)
		bookings.DELETE("/:vehicleId/:bookingId", auth, bookingHandler.CancelBooking)

		// User views
		bookings.GET("/user/:userId", auth, bookingHandler.ListUserBookings)
		bookings.GET("/user/:userId/payments", auth, bookingHandler.PaymentHistory)
	}
}
