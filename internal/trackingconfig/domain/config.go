package domain

import "time"

// DefaultIdleTimeoutMinutes is used when a tenant has no stored configuration.
const DefaultIdleTimeoutMinutes = 5

// DefaultScreenshotIntervalMinutes is used when a tenant has no stored configuration.
const DefaultScreenshotIntervalMinutes = 10

// TrackingConfig holds per-tenant tracker settings. The idle timeout feeds the
// ingest-path status derivation; the screenshot interval is synced to agents.
type TrackingConfig struct {
	TenantID                  string
	IdleTimeoutMinutes        int
	ScreenshotIntervalMinutes int
	UpdatedAt                 time.Time
}

// Default returns the configuration used for tenants with no stored row.
func Default(tenantID string) *TrackingConfig {
	return &TrackingConfig{
		TenantID:                  tenantID,
		IdleTimeoutMinutes:        DefaultIdleTimeoutMinutes,
		ScreenshotIntervalMinutes: DefaultScreenshotIntervalMinutes,
	}
}

// IdleThreshold returns the idle timeout as a duration, falling back to the
// default when the stored value is missing or non-positive.
func (c *TrackingConfig) IdleThreshold() time.Duration {
	minutes := DefaultIdleTimeoutMinutes
	if c != nil && c.IdleTimeoutMinutes > 0 {
		minutes = c.IdleTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Validate validates the config for persistence.
func (c *TrackingConfig) Validate() error {
	if c.IdleTimeoutMinutes <= 0 {
		c.IdleTimeoutMinutes = DefaultIdleTimeoutMinutes
	}
	if c.ScreenshotIntervalMinutes <= 0 {
		c.ScreenshotIntervalMinutes = DefaultScreenshotIntervalMinutes
	}
	return nil
}
