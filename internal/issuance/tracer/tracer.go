// Package tracer provides a lightweight tracing abstraction for the issuance pipeline.
//
// Services depend on the Tracer interface rather than OpenTelemetry directly.
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanIssue, tracer.String(tracer.AttrUserID, userID))
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanIssue          = "issuance.issue"
	SpanStep           = "issuance.step"
	SpanVerifyToken    = "issuance.verify_token"
	SpanVerifyRecord   = "issuance.verify_record"
	SpanRenderDocument = "issuance.render_document"
	SpanProbe          = "issuance.probe"
)

// Attribute keys.
const (
	AttrIssuanceID = "issuance.id"
	AttrUserID     = "user.id"
	AttrRecordID   = "vc.id"
	AttrStep       = "issuance.step"
	AttrVerified   = "vc.verified"
	AttrQRType     = "qr.type"
	AttrPDFBytes   = "pdf.bytes"
)

// Event names.
const (
	EventStateChanged = "issuance.state_changed"
	EventAuditEmitted = "audit.emitted"
)
