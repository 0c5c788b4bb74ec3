package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	remoteEnabled bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(remoteEnabled bool) *HealthHandler {
	return &HealthHandler{remoteEnabled: remoteEnabled}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready in placeholder mode too;
// the remote field tells operators which mode is active.
func (h *HealthHandler) Readiness(c *gin.Context) {
	remote := "placeholder"
	if h.remoteEnabled {
		remote = "configured"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "remote": remote})
}
