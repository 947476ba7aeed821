package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

func TestMapSessionToResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "argon2id$secret",
		Role:         authDomain.RoleEditor,
		IsActive:     true,
	}

	t.Run("with refresh token", func(t *testing.T) {
		response := MapSessionToResponse(&authDomain.Session{
			AccessToken:  authDomain.IssuedAccessToken{Token: "jwt", ExpiresAt: now},
			RefreshToken: &authDomain.IssuedRefreshToken{PlainToken: "opaque", ExpiresAt: now.Add(time.Hour)},
			User:         user,
		})

		assert.Equal(t, "jwt", response.AccessToken)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.Equal(t, "opaque", response.RefreshToken)
		require.NotNil(t, response.RefreshTokenExpiresAt)
		assert.Equal(t, now.Add(time.Hour), *response.RefreshTokenExpiresAt)
		require.NotNil(t, response.User)
		assert.Equal(t, "editor", response.User.Role)

		body, err := json.Marshal(response)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "argon2id")
	})

	t.Run("without refresh token", func(t *testing.T) {
		response := MapSessionToResponse(&authDomain.Session{
			AccessToken: authDomain.IssuedAccessToken{Token: "jwt", ExpiresAt: now},
		})

		body, err := json.Marshal(response)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "refreshToken")
		assert.NotContains(t, string(body), "user")
	})
}

func TestMapAuditLogToResponse(t *testing.T) {
	subjectID := uuid.Must(uuid.NewV7())
	resourceID := "post-1"
	status := 403

	response := MapAuditLogToResponse(&authDomain.AuditLog{
		ID:            uuid.Must(uuid.NewV7()),
		CorrelationID: "corr-1",
		SubjectID:     &subjectID,
		Action:        authDomain.ActionAuthorizationDenied,
		ResourceType:  authDomain.ResourceOwnership,
		ResourceID:    &resourceID,
		StatusCode:    &status,
		Signature:     []byte{1, 2, 3},
	})

	require.NotNil(t, response.SubjectID)
	assert.Equal(t, subjectID.String(), *response.SubjectID)
	assert.Equal(t, "corr-1", response.CorrelationID)
	assert.True(t, response.Signed)

	anonymous := MapAuditLogToResponse(&authDomain.AuditLog{ID: uuid.Must(uuid.NewV7())})
	assert.Nil(t, anonymous.SubjectID)
	assert.False(t, anonymous.Signed)
}

func TestMapAuditLogsToListResponse_Empty(t *testing.T) {
	body, err := json.Marshal(MapAuditLogsToListResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
}
