package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or fails validation.
var ErrInvalidToken = errors.New("invalid token")

// DashboardClaims holds JWT claims for dashboard subscriber tokens. The token
// is issued by the admin service after login; this core only validates it and
// binds the subscription to the tenant it names.
type DashboardClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
}

// TokenValidator validates HS256 dashboard tokens against a shared secret.
type TokenValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenValidator returns a TokenValidator for the given secret. issuer and
// audience are checked against the token's registered claims when non-empty.
func NewTokenValidator(secret, issuer, audience string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Validate parses and validates a dashboard token. Returns the tenant ID and
// subject on success, ErrInvalidToken otherwise.
func (v *TokenValidator) Validate(token string) (tenantID, subject string, err error) {
	if len(v.secret) == 0 || token == "" {
		return "", "", ErrInvalidToken
	}
	claims := &DashboardClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.TenantID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.TenantID, claims.Subject, nil
}

// IssueDashboardToken signs a dashboard token for the given tenant and subject.
// Used by cmd/seed and tests; production tokens come from the admin service.
func IssueDashboardToken(secret, issuer, audience, tenantID, subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := DashboardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
