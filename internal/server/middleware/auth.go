package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workeye/backend/internal/security"
	tenantdomain "workeye/backend/internal/tenant/domain"
)

const bearerPrefix = "bearer "

// TenantGetter resolves a tenant by ID; implemented by the tenant repository.
type TenantGetter interface {
	GetByID(ctx context.Context, id string) (*tenantdomain.Tenant, error)
}

// TokenComparer verifies a plaintext token against a stored hash; implemented
// by security.Hasher.
type TokenComparer interface {
	Compare(hash string, token []byte) error
}

// TrackerAuth authenticates agent requests. Agents present
// "Bearer <tenant_id>.<secret>"; the secret is verified against the bcrypt
// hash on the tenant row, and the tenant is bound to the request context.
func TrackerAuth(tenants TenantGetter, comparer TokenComparer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.Request)
		tenantID, secret, ok := splitTrackerToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		tenant, err := tenants.GetByID(c.Request.Context(), tenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve tenant"})
			return
		}
		if tenant == nil || tenant.TrackerTokenHash == "" ||
			comparer.Compare(tenant.TrackerTokenHash, []byte(secret)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		SetIdentity(c, tenant.ID, "")
		c.Next()
	}
}

// DashboardAuth authenticates dashboard requests (team status, configuration,
// websocket subscriptions) with an HS256 JWT issued by the admin service.
// Websocket clients may pass the token as a "token" query parameter since
// browsers cannot set headers on websocket dials.
func DashboardAuth(validator *security.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.Request)
		if token == "" {
			token = c.Query("token")
		}
		tenantID, subject, err := validator.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		SetIdentity(c, tenantID, subject)
		c.Next()
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// splitTrackerToken splits "<tenant_id>.<secret>" into its parts.
func splitTrackerToken(token string) (tenantID, secret string, ok bool) {
	if token == "" {
		return "", "", false
	}
	i := strings.IndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}
