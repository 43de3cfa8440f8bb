package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkful/backend/internal/service"
)

// HealthHandler reports provider liveness for uptime monitoring
type HealthHandler struct {
	healthService *service.HealthService
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(healthService *service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Check)
}

// Check probes all providers in parallel. A fully down backend answers
// 500 so load balancers stop routing to it; degraded still serves 200.
func (h *HealthHandler) Check(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())

	status := http.StatusOK
	if report.Status == service.HealthStatusUnhealthy {
		status = http.StatusInternalServerError
	}

	c.JSON(status, report)
}
