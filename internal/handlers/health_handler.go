package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rentride/internal/utils"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	overall, envelope := "healthy", utils.StatusSuccess
	if status != http.StatusOK {
		overall, envelope = "degraded", utils.StatusError
	}

	c.JSON(status, utils.APIResponse{
		Status: envelope,
		Data: gin.H{
			"status":     overall,
			"version":    h.version,
			"components": components,
		},
		Timestamp: time.Now(),
	})
}
