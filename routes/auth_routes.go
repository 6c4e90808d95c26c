package routes

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/handlers"
	"rentride/internal/middleware"
)

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, cfg *RouterConfig) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)

		if cfg.LoginLimiter != nil {
			authRoutes.POST("/login", middleware.RateLimit(cfg.LoginLimiter, "login", cfg.Logger), authHandler.Login)
		} else {
			authRoutes.POST("/login", authHandler.Login)
		}
	}
}
