package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"workeye/backend/internal/security"
	tenantdomain "workeye/backend/internal/tenant/domain"
)

type mockTenants struct {
	tenant *tenantdomain.Tenant
	err    error
}

func (m *mockTenants) GetByID(ctx context.Context, id string) (*tenantdomain.Tenant, error) {
	return m.tenant, m.err
}

func trackerRouter(tenants TenantGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// bcrypt min cost keeps the test fast
	r.GET("/probe", TrackerAuth(tenants, security.NewHasher(4)), func(c *gin.Context) {
		tenantID, _ := TenantID(c)
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID})
	})
	return r
}

func TestTrackerAuthAcceptsValidToken(t *testing.T) {
	hasher := security.NewHasher(4)
	hash, err := hasher.Hash([]byte("s3cret"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := trackerRouter(&mockTenants{tenant: &tenantdomain.Tenant{ID: "t1", TrackerTokenHash: hash}})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer t1.s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestTrackerAuthRejectsWrongSecret(t *testing.T) {
	hasher := security.NewHasher(4)
	hash, _ := hasher.Hash([]byte("s3cret"))
	r := trackerRouter(&mockTenants{tenant: &tenantdomain.Tenant{ID: "t1", TrackerTokenHash: hash}})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer t1.wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestTrackerAuthRejectsUnknownTenant(t *testing.T) {
	r := trackerRouter(&mockTenants{})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer ghost.s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestTrackerAuthRejectsMalformedHeader(t *testing.T) {
	r := trackerRouter(&mockTenants{})
	for _, header := range []string{"", "Bearer", "Bearer no-dot-here", "Basic dXNlcg=="} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d, want 401", header, w.Code)
		}
	}
}

func dashboardRouter(validator *security.TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", DashboardAuth(validator), func(c *gin.Context) {
		tenantID, _ := TenantID(c)
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID})
	})
	return r
}

func TestDashboardAuthHeaderToken(t *testing.T) {
	token, err := security.IssueDashboardToken("sec", "iss", "aud", "t1", "admin@b.com", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := dashboardRouter(security.NewTokenValidator("sec", "iss", "aud"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDashboardAuthQueryTokenFallback(t *testing.T) {
	// Browsers cannot set headers on websocket dials, so the token may ride
	// in the query string.
	token, err := security.IssueDashboardToken("sec", "iss", "aud", "t1", "admin@b.com", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := dashboardRouter(security.NewTokenValidator("sec", "iss", "aud"))

	req := httptest.NewRequest(http.MethodGet, "/probe?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDashboardAuthRejectsWrongSecret(t *testing.T) {
	token, _ := security.IssueDashboardToken("other", "iss", "aud", "t1", "admin@b.com", time.Minute)
	r := dashboardRouter(security.NewTokenValidator("sec", "iss", "aud"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}
