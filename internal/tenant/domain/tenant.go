package domain

import "time"

// Tenant is the isolation boundary for a company. Every member, device,
// session, and broadcast belongs to exactly one tenant.
type Tenant struct {
	ID   string
	Name string
	// TrackerTokenHash is the bcrypt hash of the tenant's agent token.
	// Plaintext tokens are issued out of band and never stored.
	TrackerTokenHash string
	CreatedAt        time.Time
}
