package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/health"
)

type healthChecker interface {
	Liveness(ctx context.Context) health.HealthResult
	Readiness(ctx context.Context) health.HealthResult
}

type HealthHandler struct {
	checker healthChecker
}

func NewHealthHandler(checker healthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	writeHealth(c, h.checker.Liveness(c.Request.Context()))
}

// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	writeHealth(c, h.checker.Readiness(c.Request.Context()))
}

func writeHealth(c *gin.Context, res health.HealthResult) {
	status := http.StatusOK
	if res.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, res)
}
