// Package handler exposes per-tenant tracking configuration over HTTP. Agents
// poll it to sync their idle timeout and screenshot interval; dashboard
// admins update it.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workeye/backend/internal/server/middleware"
	"workeye/backend/internal/trackingconfig/domain"
	"workeye/backend/internal/trackingconfig/repository"
)

// Handler serves the /api/configuration routes.
type Handler struct {
	configs repository.Repository
	log     *zap.Logger
}

// New returns a configuration handler.
func New(configs repository.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{configs: configs, log: log}
}

// RegisterRead mounts the read route (tracker and dashboard both use it).
func (h *Handler) RegisterRead(g *gin.RouterGroup) {
	g.GET("/configuration", h.Get)
}

// RegisterWrite mounts the update route (dashboard only).
func (h *Handler) RegisterWrite(g *gin.RouterGroup) {
	g.PUT("/configuration", h.Update)
}

type configResponse struct {
	IdleTimeoutMinutes        int        `json:"idle_timeout_minutes"`
	ScreenshotIntervalMinutes int        `json:"screenshot_interval_minutes"`
	UpdatedAt                 *time.Time `json:"updated_at,omitempty"`
}

// Get returns the tenant's tracking configuration, falling back to defaults
// when none is stored.
func (h *Handler) Get(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}

	cfg, err := h.configs.GetByTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.log.Error("config lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	resp := configResponse{}
	if cfg == nil {
		def := domain.Default(tenantID)
		resp.IdleTimeoutMinutes = def.IdleTimeoutMinutes
		resp.ScreenshotIntervalMinutes = def.ScreenshotIntervalMinutes
	} else {
		resp.IdleTimeoutMinutes = cfg.IdleTimeoutMinutes
		resp.ScreenshotIntervalMinutes = cfg.ScreenshotIntervalMinutes
		resp.UpdatedAt = &cfg.UpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

type updateConfigRequest struct {
	IdleTimeoutMinutes        int `json:"idle_timeout_minutes" binding:"required,min=1,max=480"`
	ScreenshotIntervalMinutes int `json:"screenshot_interval_minutes" binding:"required,min=1,max=480"`
}

// Update upserts the tenant's tracking configuration. The new idle timeout
// takes effect on the next ingested sample.
func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := &domain.TrackingConfig{
		TenantID:                  tenantID,
		IdleTimeoutMinutes:        req.IdleTimeoutMinutes,
		ScreenshotIntervalMinutes: req.ScreenshotIntervalMinutes,
		UpdatedAt:                 time.Now().UTC(),
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.configs.Upsert(c.Request.Context(), cfg); err != nil {
		h.log.Error("config upsert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, configResponse{
		IdleTimeoutMinutes:        cfg.IdleTimeoutMinutes,
		ScreenshotIntervalMinutes: cfg.ScreenshotIntervalMinutes,
		UpdatedAt:                 &cfg.UpdatedAt,
	})
}
