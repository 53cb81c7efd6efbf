package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is anything that can report whether its backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports the state of the database and device store.
type HealthHandler struct {
	database    HealthChecker
	deviceStore HealthChecker
}

func NewHealthHandler(database, deviceStore HealthChecker) *HealthHandler {
	return &HealthHandler{database: database, deviceStore: deviceStore}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "healthy"}

	check := func(name string, hc HealthChecker) {
		if err := hc.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body[name] = "disconnected"
			body[name+"_error"] = err.Error()
			return
		}
		body[name] = "connected"
	}
	check("database", h.database)
	check("device_store", h.deviceStore)

	c.JSON(status, body)
}
