package domain

import (
	"context"

	"github.com/google/uuid"
)

// RequestInfo describes the inbound request an operation runs on behalf of.
// Audit records copy it so every record of one request shares the correlation id.
type RequestInfo struct {
	CorrelationID string
	HTTPMethod    string
	Path          string
	IPAddress     string
	UserAgent     string
}

// AuditEvent is what callers hand to the audit sink; request details come from the context.
type AuditEvent struct {
	Action       string
	SubjectID    *uuid.UUID
	ResourceType string
	ResourceID   *string
	StatusCode   *int
	Metadata     map[string]any
}

type requestInfoKey struct{}

// WithRequestInfo stores info in ctx.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFrom returns the request info stored in ctx.
func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
