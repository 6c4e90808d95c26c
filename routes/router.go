package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentride/internal/handlers"
	"rentride/internal/middleware"
	"rentride/internal/utils"
	"rentride/pkg/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Vehicle *handlers.VehicleHandler
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Review  *handlers.ReviewHandler
	Health  *handlers.HealthHandler
}

type RouterConfig struct {
	Tokens       *utils.TokenManager
	Logger       *logger.Logger
	CORSOrigins  []string
	LoginLimiter middleware.Limiter
	APILimiter   middleware.Limiter
	// UploadsDir, when set, serves locally stored images under /uploads.
	UploadsDir string
}

func SetupRouter(cfg *RouterConfig, h *Handlers) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(cfg.Logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadsDir != "" {
		router.Static("/uploads", cfg.UploadsDir)
	}

	auth := middleware.AuthRequired(cfg.Tokens)

	api := router.Group("/api")
	if cfg.APILimiter != nil {
		api.Use(middleware.RateLimit(cfg.APILimiter, "api", cfg.Logger))
	}
	{
		SetupAuthRoutes(api, h.Auth, cfg)
		SetupVehicleRoutes(api, h.Vehicle, auth)
		SetupBookingRoutes(api, h.Booking, auth)
		SetupPaymentRoutes(api, h.Payment, auth)
		SetupReviewRoutes(api, h.Review, auth)
	}

	return router
}
