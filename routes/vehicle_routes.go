package routes

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/handlers"
	"rentride/internal/middleware"
)

func SetupVehicleRoutes(r *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, auth gin.HandlerFunc) {
	vehicles := r.Group("/vehicles")
	{
		vehicles.GET("", vehicleHandler.ListVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
	}

	admin := r.Group("/vehicles")
	admin.Use(auth, middleware.AdminRequired())
	{
		admin.POST("", vehicleHandler.CreateVehicle)
		admin.POST("/:id/images", vehicleHandler.UploadImage)
	}
}
