// Package handler exposes the dashboard read API. Reads never mutate presence
// state: a member whose agent died with a session still open is reported
// offline by staleness, but the session stays open until a real punch-out.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	memberrepo "workeye/backend/internal/member/repository"
	"workeye/backend/internal/presence"
	"workeye/backend/internal/server/middleware"
)

// Handler serves the /api/dashboard routes.
type Handler struct {
	members memberrepo.Repository
	log     *zap.Logger

	now func() time.Time
}

// New returns a dashboard handler.
func New(members memberrepo.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		members: members,
		log:     log,
		now:     time.Now,
	}
}

// Register mounts the dashboard routes on the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/team-status", h.TeamStatus)
}

type memberStatus struct {
	MemberID              string     `json:"member_id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Status                string     `json:"status"`
	IsPunchedIn           bool       `json:"is_punched_in"`
	LastHeartbeatAt       *time.Time `json:"last_heartbeat_at"`
	SecondsSinceHeartbeat *int64     `json:"seconds_since_heartbeat"`
}

type teamStatusResponse struct {
	Members []memberStatus `json:"members"`
	Counts  map[string]int `json:"counts"`
	AsOf    time.Time      `json:"as_of"`
}

// TeamStatus lists every member of the tenant with their effective presence.
// The stored status is trusted only while the heartbeat is fresh; past that
// the recency rule takes over and the status decays toward offline.
func (h *Handler) TeamStatus(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}

	members, err := h.members.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.log.Error("member list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	now := h.now().UTC()
	resp := teamStatusResponse{
		Members: make([]memberStatus, 0, len(members)),
		Counts: map[string]int{
			string(presence.StatusActive):  0,
			string(presence.StatusIdle):    0,
			string(presence.StatusOffline): 0,
		},
		AsOf: now,
	}
	for _, m := range members {
		status := presence.Effective(m.Status, m.LastHeartbeatAt, now)
		ms := memberStatus{
			MemberID:        m.ID,
			Email:           m.Email,
			Name:            m.Name,
			Status:          string(status),
			IsPunchedIn:     m.IsPunchedIn,
			LastHeartbeatAt: m.LastHeartbeatAt,
		}
		if m.LastHeartbeatAt != nil {
			secs := int64(now.Sub(*m.LastHeartbeatAt).Seconds())
			ms.SecondsSinceHeartbeat = &secs
		}
		resp.Counts[string(status)]++
		resp.Members = append(resp.Members, ms)
	}
	c.JSON(http.StatusOK, resp)
}
