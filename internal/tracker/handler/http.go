// Package handler exposes the tracker-facing HTTP API consumed by desktop
// agents: punch in/out, activity upload, heartbeat, and a status probe. All
// routes sit behind the tracker token middleware, which scopes the request
// to a tenant.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workeye/backend/internal/ingest"
	"workeye/backend/internal/ledger"
	memberrepo "workeye/backend/internal/member/repository"
	"workeye/backend/internal/server/middleware"
	sessiondomain "workeye/backend/internal/session/domain"
	sessionrepo "workeye/backend/internal/session/repository"
)

// Ledger is the session lifecycle surface the handler needs.
type Ledger interface {
	PunchIn(ctx context.Context, tenantID, email, fingerprint string) (*sessiondomain.PunchSession, bool, error)
	PunchOut(ctx context.Context, tenantID, email string) (*sessiondomain.PunchSession, error)
}

// Guard is the telemetry ingest surface the handler needs.
type Guard interface {
	Upload(ctx context.Context, sample ingest.Sample) (*ingest.Result, error)
	Heartbeat(ctx context.Context, tenantID, email, fingerprint string) (*ingest.Result, error)
}

// Handler serves the /api/tracker routes.
type Handler struct {
	ledger   Ledger
	guard    Guard
	members  memberrepo.Repository
	sessions sessionrepo.Repository
	log      *zap.Logger
}

// New returns a tracker handler.
func New(ledger Ledger, guard Guard, members memberrepo.Repository, sessions sessionrepo.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		ledger:   ledger,
		guard:    guard,
		members:  members,
		sessions: sessions,
		log:      log,
	}
}

// Register mounts the tracker routes on the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/punch-in", h.PunchIn)
	g.POST("/punch-out", h.PunchOut)
	g.POST("/upload", h.Upload)
	g.POST("/heartbeat", h.Heartbeat)
	g.GET("/status", h.Status)
}

type punchInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	DeviceID string `json:"device_id" binding:"required"`
}

type punchInResponse struct {
	SessionID   string    `json:"session_id"`
	StartTime   time.Time `json:"start_time"`
	AlreadyOpen bool      `json:"already_open"`
}

// PunchIn opens a session for the member. Replaying it against an open
// session returns that session with already_open=true and a 200; the agent
// cannot tell a retry from a first attempt, which is the point.
func (h *Handler) PunchIn(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	var req punchInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ses, alreadyOpen, err := h.ledger.PunchIn(c.Request.Context(), tenantID, req.Email, req.DeviceID)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchInResponse{
		SessionID:   ses.ID,
		StartTime:   ses.StartedAt,
		AlreadyOpen: alreadyOpen,
	})
}

type punchOutRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type punchOutResponse struct {
	SessionID       *string    `json:"session_id"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// PunchOut closes the member's open session. With nothing open it still
// returns 200 with a null session_id, so agent retries after a crash settle
// without errors.
func (h *Handler) PunchOut(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	var req punchOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ses, err := h.ledger.PunchOut(c.Request.Context(), tenantID, req.Email)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}
	if ses == nil {
		c.JSON(http.StatusOK, punchOutResponse{})
		return
	}
	c.JSON(http.StatusOK, punchOutResponse{
		SessionID:       &ses.ID,
		EndTime:         ses.EndedAt,
		DurationSeconds: &ses.DurationSeconds,
	})
}

type uploadRequest struct {
	Email          string     `json:"email" binding:"required,email"`
	DeviceID       string     `json:"device_id" binding:"required"`
	IsIdle         bool       `json:"is_idle"`
	IsLocked       bool       `json:"is_locked"`
	IdleForSeconds float64    `json:"idle_for_seconds"`
	Timestamp      *time.Time `json:"timestamp"`
}

type ingestResponse struct {
	Accepted bool   `json:"accepted"`
	Status   string `json:"status,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Upload ingests one activity sample. A sample arriving after punch-out gets
// a 200 with accepted=false and a code, not an error status: the agent must
// drop it, not retry it.
func (h *Handler) Upload(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.guard.Upload(c.Request.Context(), ingest.Sample{
		TenantID:    tenantID,
		Email:       req.Email,
		Fingerprint: req.DeviceID,
		IsIdle:      req.IsIdle,
		IsLocked:    req.IsLocked,
		IdleFor:     time.Duration(req.IdleForSeconds * float64(time.Second)),
		ObservedAt:  req.Timestamp,
	})
	if err != nil {
		h.writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingestResponse{
		Accepted: res.Accepted,
		Status:   string(res.Status),
		Code:     res.Reason,
	})
}

type heartbeatRequest struct {
	Email    string `json:"email" binding:"required,email"`
	DeviceID string `json:"device_id" binding:"required"`
}

// Heartbeat refreshes liveness for a punched-in member. Fenced heartbeats get
// the same success-shaped rejection as samples.
func (h *Handler) Heartbeat(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.guard.Heartbeat(c.Request.Context(), tenantID, req.Email, req.DeviceID)
	if err != nil {
		h.writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingestResponse{
		Accepted: res.Accepted,
		Status:   string(res.Status),
		Code:     res.Reason,
	})
}

type statusResponse struct {
	MemberID    string     `json:"member_id"`
	Status      string     `json:"status"`
	IsPunchedIn bool       `json:"is_punched_in"`
	SessionID   *string    `json:"session_id,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
}

// Status reports the member's current punch state, letting an agent resync
// after a restart without opening a session.
func (h *Handler) Status(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	member, err := h.members.GetByEmail(c.Request.Context(), tenantID, email)
	if err != nil {
		h.log.Error("member lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	resp := statusResponse{
		MemberID:    member.ID,
		Status:      string(member.Status),
		IsPunchedIn: member.IsPunchedIn,
	}
	if member.IsPunchedIn {
		ses, err := h.sessions.GetOpenByMember(c.Request.Context(), tenantID, member.ID)
		if err != nil {
			h.log.Error("open session lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if ses != nil {
			resp.SessionID = &ses.ID
			resp.StartedAt = &ses.StartedAt
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case errors.Is(err, ledger.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "device not registered"})
	default:
		h.log.Error("ledger operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrUnknownMember):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case errors.Is(err, ingest.ErrUnknownDevice):
		c.JSON(http.StatusNotFound, gin.H{"error": "device not registered"})
	default:
		h.log.Error("ingest operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
