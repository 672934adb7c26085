// Package handler exposes the liveness endpoint.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Handler serves /health.
type Handler struct {
	db *sql.DB
}

// New returns a health handler. db may be nil; the endpoint then reports
// liveness only.
func New(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Register mounts the health route.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
}

// Health reports process liveness plus database reachability.
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok", "time": time.Now().UTC()}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "ok"
	}
	c.JSON(http.StatusOK, resp)
}
