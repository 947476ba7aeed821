package dto

import (
	"time"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// UserResponse represents a user in API responses. The password hash is never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// SessionResponse is returned by login and refresh.
// SECURITY: the refresh token is only returned once and must be stored by the client.
type SessionResponse struct {
	AccessToken           string        `json:"accessToken"`
	TokenType             string        `json:"tokenType"`
	ExpiresAt             time.Time     `json:"expiresAt"`
	RefreshToken          string        `json:"refreshToken,omitempty"` //nolint:gosec // returned once
	RefreshTokenExpiresAt *time.Time    `json:"refreshTokenExpiresAt,omitempty"`
	User                  *UserResponse `json:"user,omitempty"`
}

// MapSessionToResponse converts a session to an API response.
func MapSessionToResponse(session *authDomain.Session) SessionResponse {
	response := SessionResponse{
		AccessToken: session.AccessToken.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.AccessToken.ExpiresAt,
	}
	if session.RefreshToken != nil {
		expiresAt := session.RefreshToken.ExpiresAt
		response.RefreshToken = session.RefreshToken.PlainToken
		response.RefreshTokenExpiresAt = &expiresAt
	}
	if session.User != nil {
		user := MapUserToResponse(session.User)
		response.User = &user
	}
	return response
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Message         string `json:"message"`
	RevokedSessions *int64 `json:"revokedSessions,omitempty"`
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlationId"`
	SubjectID     *string        `json:"subjectId,omitempty"`
	Action        string         `json:"action"`
	ResourceType  string         `json:"resourceType"`
	ResourceID    *string        `json:"resourceId,omitempty"`
	HTTPMethod    string         `json:"httpMethod,omitempty"`
	Path          string         `json:"path,omitempty"`
	StatusCode    *int           `json:"statusCode,omitempty"`
	IPAddress     string         `json:"ipAddress,omitempty"`
	UserAgent     string         `json:"userAgent,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Signed        bool           `json:"signed"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *authDomain.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:            auditLog.ID.String(),
		CorrelationID: auditLog.CorrelationID,
		Action:        auditLog.Action,
		ResourceType:  auditLog.ResourceType,
		ResourceID:    auditLog.ResourceID,
		HTTPMethod:    auditLog.HTTPMethod,
		Path:          auditLog.Path,
		StatusCode:    auditLog.StatusCode,
		IPAddress:     auditLog.IPAddress,
		UserAgent:     auditLog.UserAgent,
		Metadata:      auditLog.Metadata,
		Signed:        auditLog.IsSigned(),
		CreatedAt:     auditLog.CreatedAt,
	}
	if auditLog.SubjectID != nil {
		subjectID := auditLog.SubjectID.String()
		response.SubjectID = &subjectID
	}
	return response
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts a slice of domain audit logs to a list API response.
func MapAuditLogsToListResponse(auditLogs []*authDomain.AuditLog) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		data = append(data, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{Data: data}
}
