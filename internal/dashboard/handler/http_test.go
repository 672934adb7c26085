package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	memberdomain "workeye/backend/internal/member/domain"
	"workeye/backend/internal/presence"
	"workeye/backend/internal/server/middleware"
)

type mockMembers struct {
	members []*memberdomain.Member
}

func (m *mockMembers) GetByID(ctx context.Context, tenantID, id string) (*memberdomain.Member, error) {
	return nil, nil
}

func (m *mockMembers) GetByEmail(ctx context.Context, tenantID, email string) (*memberdomain.Member, error) {
	return nil, nil
}

func (m *mockMembers) ListByTenant(ctx context.Context, tenantID string) ([]*memberdomain.Member, error) {
	return m.members, nil
}

func (m *mockMembers) Create(ctx context.Context, mem *memberdomain.Member) error { return nil }

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, "t1", "admin@b.com")
		c.Next()
	})
	h.Register(r.Group("/api/dashboard"))
	return r
}

func ptr(t time.Time) *time.Time { return &t }

func TestTeamStatusAppliesRecencyDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := New(&mockMembers{members: []*memberdomain.Member{
		{
			ID: "fresh", Email: "fresh@b.com",
			Status: presence.StatusActive, IsPunchedIn: true,
			LastHeartbeatAt: ptr(now.Add(-30 * time.Second)),
		},
		{
			ID: "fading", Email: "fading@b.com",
			Status: presence.StatusActive, IsPunchedIn: true,
			LastHeartbeatAt: ptr(now.Add(-300 * time.Second)),
		},
		{
			// Agent crashed with the session still open: staleness alone must
			// drive the reported status to offline, without closing anything.
			ID: "stale", Email: "stale@b.com",
			Status: presence.StatusActive, IsPunchedIn: true,
			LastHeartbeatAt: ptr(now.Add(-700 * time.Second)),
		},
		{
			ID: "never", Email: "never@b.com",
			Status: presence.StatusOffline, IsPunchedIn: false,
		},
	}}, nil)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/team-status", nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp teamStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	byID := map[string]memberStatus{}
	for _, m := range resp.Members {
		byID[m.MemberID] = m
	}
	if got := byID["fresh"].Status; got != "active" {
		t.Errorf("fresh heartbeat: status %q, want active", got)
	}
	if got := byID["fading"].Status; got != "idle" {
		t.Errorf("300s heartbeat: status %q, want idle", got)
	}
	if got := byID["stale"].Status; got != "offline" {
		t.Errorf("700s heartbeat: status %q, want offline", got)
	}
	if !byID["stale"].IsPunchedIn {
		t.Error("staleness must not flip the punch flag")
	}
	if got := byID["never"].Status; got != "offline" {
		t.Errorf("no heartbeat ever: status %q, want offline", got)
	}
	if byID["never"].SecondsSinceHeartbeat != nil {
		t.Error("expected null seconds_since_heartbeat when no heartbeat exists")
	}

	if resp.Counts["active"] != 1 || resp.Counts["idle"] != 1 || resp.Counts["offline"] != 2 {
		t.Errorf("unexpected counts %+v", resp.Counts)
	}
}

func TestTeamStatusStoredIdleWinsWhileFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := New(&mockMembers{members: []*memberdomain.Member{
		{
			// Ingest just derived idle from a sample; a heartbeat 10s old must
			// not promote the member back to active.
			ID: "m1", Email: "a@b.com",
			Status: presence.StatusIdle, IsPunchedIn: true,
			LastHeartbeatAt: ptr(now.Add(-10 * time.Second)),
		},
	}}, nil)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/team-status", nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, req)

	var resp teamStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Members[0].Status; got != "idle" {
		t.Fatalf("stored idle with a fresh heartbeat: status %q, want idle", got)
	}
}
