package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestIdentityRoundTrip(t *testing.T) {
	c := newTestContext(t)
	SetIdentity(c, "t1", "admin@b.com")

	tenantID, ok := TenantID(c)
	if !ok || tenantID != "t1" {
		t.Fatalf("TenantID = %q, %v", tenantID, ok)
	}
	subject, ok := Subject(c)
	if !ok || subject != "admin@b.com" {
		t.Fatalf("Subject = %q, %v", subject, ok)
	}
}

func TestIdentityAbsent(t *testing.T) {
	c := newTestContext(t)
	if _, ok := TenantID(c); ok {
		t.Fatal("expected no tenant on a fresh context")
	}
	if _, ok := Subject(c); ok {
		t.Fatal("expected no subject on a fresh context")
	}
}

func TestSetIdentityWithoutSubject(t *testing.T) {
	c := newTestContext(t)
	SetIdentity(c, "t1", "")
	if _, ok := Subject(c); ok {
		t.Fatal("empty subject must not be stored")
	}
}
