package middleware

import "github.com/gin-gonic/gin"

const (
	tenantIDKey = "tenant_id"
	subjectKey  = "subject"
)

// SetIdentity stores the authenticated tenant (and optional subject) on the
// request context. Handlers read them via TenantID and Subject.
func SetIdentity(c *gin.Context, tenantID, subject string) {
	c.Set(tenantIDKey, tenantID)
	if subject != "" {
		c.Set(subjectKey, subject)
	}
}

// TenantID returns the tenant_id from the request context and true if set.
func TenantID(c *gin.Context) (string, bool) {
	v, ok := c.Get(tenantIDKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Subject returns the authenticated subject (dashboard user) and true if set.
func Subject(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
