package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantumair/qbooking/internal/quantum"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	caps  quantum.Capabilities
	db    Pinger
	cache Pinger
}

func NewHealthHandler(caps quantum.Capabilities, db, cache Pinger) *HealthHandler {
	return &HealthHandler{caps: caps, db: db, cache: cache}
}

func (h *HealthHandler) Register(router *gin.RouterGroup) {
	router.GET("/health", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			deps["postgres"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			deps["postgres"] = "up"
		}
	}
	if h.cache != nil {
		// Redis is an optimization, not a dependency; a down cache
		// does not fail the health check.
		if err := h.cache.Ping(ctx); err != nil {
			deps["redis"] = "down"
		} else {
			deps["redis"] = "up"
		}
	}

	c.JSON(status, gin.H{
		"status":       httpStatusWord(status),
		"dependencies": deps,
		"quantum":      h.caps.Status(),
	})
}

func httpStatusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
