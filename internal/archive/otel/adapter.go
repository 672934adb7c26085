package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"workeye/backend/internal/archive"
)

// NewEmitter returns an archive.Emitter that sends records as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op emitter.
func NewEmitter(provider *sdklog.LoggerProvider) archive.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("workeye.archive")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *archive.Record) error { return nil }
func (noopEmitter) Close() error                                { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the archive record to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, rec *archive.Record) error {
	if rec == nil {
		return nil
	}
	out := otellog.Record{}
	if !rec.CreatedAt.IsZero() {
		out.SetTimestamp(rec.CreatedAt)
	} else {
		out.SetTimestamp(time.Now().UTC())
	}
	out.SetBody(otellog.StringValue(rec.EventType))
	if rec.TenantID != "" {
		out.AddAttributes(otellog.String("tenant_id", rec.TenantID))
	}
	if rec.MemberID != "" {
		out.AddAttributes(otellog.String("member_id", rec.MemberID))
	}
	if rec.DeviceID != "" {
		out.AddAttributes(otellog.String("device_id", rec.DeviceID))
	}
	if rec.SessionID != "" {
		out.AddAttributes(otellog.String("session_id", rec.SessionID))
	}
	if rec.Status != "" {
		out.AddAttributes(otellog.String("status", rec.Status))
	}
	if rec.EventType == archive.EventActivitySample {
		out.AddAttributes(
			otellog.Bool("is_idle", rec.IsIdle),
			otellog.Bool("is_locked", rec.IsLocked),
			otellog.Float64("idle_for_seconds", rec.IdleForSeconds),
		)
	}
	if rec.ObservedAt != nil {
		out.AddAttributes(otellog.String("observed_at", rec.ObservedAt.Format(time.RFC3339Nano)))
	}
	e.logger.Emit(ctx, out)
	return nil
}

// Close is a no-op; the LoggerProvider owns exporter shutdown.
func (e *otelEmitter) Close() error { return nil }
