package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/auth/http/dto"
	"github.com/allisson/warden/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/warden/internal/errors"
)

func setupTokenHandler(t *testing.T) (*gin.Engine, *mocks.MockTokenUseCase, *authDomain.Identity) {
	t.Helper()

	tokenUseCase := mocks.NewMockTokenUseCase(t)
	handler := NewTokenHandler(tokenUseCase, createTestLogger())
	identity := newIdentity(authDomain.RoleEditor)

	router := gin.New()
	router.POST("/v1/auth/login", handler.LoginHandler)
	router.POST("/v1/auth/refresh", handler.RefreshHandler)
	router.POST("/v1/auth/logout", withIdentity(identity), handler.LogoutHandler)
	router.POST("/v1/auth/logout-all", withIdentity(identity), handler.LogoutAllHandler)
	return router, tokenUseCase, identity
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "192.0.2.1:5000"
	router.ServeHTTP(w, req)
	return w
}

func testSession() *authDomain.Session {
	expiresAt := time.Now().UTC().Add(15 * time.Minute)
	return &authDomain.Session{
		AccessToken:  authDomain.IssuedAccessToken{Token: "access.jwt", ExpiresAt: expiresAt},
		RefreshToken: &authDomain.IssuedRefreshToken{PlainToken: "opaque", ExpiresAt: expiresAt.Add(time.Hour)},
		User: &authDomain.User{
			ID:       uuid.Must(uuid.NewV7()),
			Name:     "Ada",
			Email:    "ada@example.com",
			Role:     authDomain.RoleEditor,
			IsActive: true,
		},
	}
}

func TestTokenHandler_LoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		tokenUseCase.On("Login", mock.Anything, &authDomain.LoginInput{
			Email:    "ada@example.com",
			Password: "Analytical1",
			ClientMetadata: authDomain.ClientMetadata{
				IPAddress: "192.0.2.1",
				UserAgent: "test-agent",
			},
		}).Return(testSession(), nil).Once()

		w := postJSON(router, "/v1/auth/login", dto.LoginRequest{Email: "ada@example.com", Password: "Analytical1"})

		require.Equal(t, http.StatusOK, w.Code)
		var response dto.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "access.jwt", response.AccessToken)
		assert.Equal(t, "opaque", response.RefreshToken)
		assert.Equal(t, "Bearer", response.TokenType)
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		tokenUseCase.On("Login", mock.Anything, mock.Anything).Return(nil, authDomain.ErrInvalidCredentials).Once()

		w := postJSON(router, "/v1/auth/login", dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, authDomain.CodeInvalidCredentials, decodeError(t, w).Code)
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		router, _, _ := setupTokenHandler(t)

		w := postJSON(router, "/v1/auth/login", dto.LoginRequest{Email: "not-an-email"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _, _ := setupTokenHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTokenHandler_RefreshHandler(t *testing.T) {
	t.Run("Success_WithoutRotation", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		session := testSession()
		session.RefreshToken = nil
		tokenUseCase.On("Refresh", mock.Anything, "opaque", mock.Anything).Return(session, nil).Once()

		w := postJSON(router, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: "opaque"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"refreshToken"`)
		assert.Contains(t, w.Body.String(), `"accessToken":"access.jwt"`)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		tokenUseCase.On("Refresh", mock.Anything, "revoked", mock.Anything).
			Return(nil, authDomain.ErrRefreshTokenInvalid).Once()

		w := postJSON(router, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: "revoked"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, authDomain.CodeInvalidRefreshToken, decodeError(t, w).Code)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		router, _, _ := setupTokenHandler(t)

		w := postJSON(router, "/v1/auth/refresh", map[string]string{})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, authDomain.CodeInvalidRefreshToken, decodeError(t, w).Code)
	})
}

func TestTokenHandler_LogoutHandler(t *testing.T) {
	t.Run("revokes the presented token", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		tokenUseCase.On("RevokeRefreshToken", mock.Anything, "opaque").Return(nil).Once()

		w := postJSON(router, "/v1/auth/logout", dto.RefreshRequest{RefreshToken: "opaque"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty body still succeeds", func(t *testing.T) {
		router, _, _ := setupTokenHandler(t)

		w := postJSON(router, "/v1/auth/logout", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		router, tokenUseCase, _ := setupTokenHandler(t)
		tokenUseCase.On("RevokeRefreshToken", mock.Anything, "opaque").
			Return(apperrors.ErrServiceUnavailable).Once()

		w := postJSON(router, "/v1/auth/logout", dto.RefreshRequest{RefreshToken: "opaque"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestTokenHandler_LogoutAllHandler(t *testing.T) {
	router, tokenUseCase, identity := setupTokenHandler(t)
	tokenUseCase.On("RevokeAllForSubject", mock.Anything, identity.SubjectID).Return(int64(2), nil).Once()

	w := postJSON(router, "/v1/auth/logout-all", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.LogoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.RevokedSessions)
	assert.Equal(t, int64(2), *response.RevokedSessions)
}
