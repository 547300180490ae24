package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness checks
type HealthController struct {
	version string
	db      Pinger
}

// NewHealthController creates a HealthController. db may be nil.
func NewHealthController(version string, db Pinger) *HealthController {
	return &HealthController{version: version, db: db}
}

// Check reports service and database status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	status, code := "ok", http.StatusOK
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			status, code = "database unavailable", http.StatusServiceUnavailable
		}
	}
	ctx.JSON(code, gin.H{"status": status, "version": c.version})
}
