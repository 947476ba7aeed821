package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionAuthenticationDenied = "authentication:denied"
	ActionAuthorizationDenied  = "authorization:denied"

	ActionAuthLogin     = "auth:login"
	ActionAuthRefresh   = "auth:refresh"
	ActionAuthLogout    = "auth:logout"
	ActionAuthLogoutAll = "auth:logout_all"

	ActionUserCreate       = "user:create"
	ActionUserRoleChange   = "user:role_change"
	ActionUserStatusChange = "user:status_change"
	ActionProfileUpdate    = "profile:update"

	ActionPostCreate = "post:create"
	ActionPostUpdate = "post:update"
	ActionPostDelete = "post:delete"
)

// ResourceOwnership is the resource type recorded for ownership denials.
const ResourceOwnership = "ownership"

// AuditLog is an immutable, append-only record of a security relevant event.
// CorrelationID joins every record produced while serving one inbound request.
type AuditLog struct {
	ID            uuid.UUID
	CorrelationID string
	SubjectID     *uuid.UUID
	Action        string
	ResourceType  string
	ResourceID    *string
	HTTPMethod    string
	Path          string
	StatusCode    *int
	IPAddress     string
	UserAgent     string
	Metadata      map[string]any
	KeyID         string
	Signature     []byte
	CreatedAt     time.Time
}

// IsSigned reports whether the record carries a signature.
func (a *AuditLog) IsSigned() bool {
	return len(a.Signature) > 0
}

// AuditLogFilter narrows audit log queries. Nil fields are not applied; time bounds are inclusive.
type AuditLogFilter struct {
	SubjectID     *uuid.UUID
	Action        *string
	ResourceType  *string
	ResourceID    *string
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
	Offset        int
	Limit         int
}

// AuditVerificationReport summarizes a signature verification pass.
type AuditVerificationReport struct {
	TotalChecked int
	Valid        int
	Invalid      int
	Unsigned     int
	InvalidIDs   []uuid.UUID
}

// Passed reports whether no tampered record was found.
func (r *AuditVerificationReport) Passed() bool {
	return r.Invalid == 0
}
