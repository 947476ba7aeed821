package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/auth/http/dto"
	authUseCase "github.com/allisson/warden/internal/auth/usecase"
	"github.com/allisson/warden/internal/httputil"
	customValidation "github.com/allisson/warden/internal/validation"
)

// TokenHandler handles login, refresh and logout.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

func clientMetadata(c *gin.Context) authDomain.ClientMetadata {
	return authDomain.ClientMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// LoginHandler exchanges credentials for an access token and a refresh token.
// POST /v1/auth/login - No authentication required. Returns 200 OK with the session.
func (h *TokenHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	session, err := h.tokenUseCase.Login(c.Request.Context(), &authDomain.LoginInput{
		Email:          req.Email,
		Password:       req.Password,
		ClientMetadata: clientMetadata(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// RefreshHandler exchanges a refresh token for a new access token.
// POST /v1/auth/refresh - No authentication required. Unknown, revoked and expired tokens all
// respond 401 INVALID_REFRESH_TOKEN.
func (h *TokenHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, authDomain.ErrRefreshTokenInvalid, h.logger)
		return
	}

	session, err := h.tokenUseCase.Refresh(c.Request.Context(), req.RefreshToken, clientMetadata(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// LogoutHandler revokes the presented refresh token.
// POST /v1/auth/logout - The refresh token is the credential; a missing or expired access
// token is not required. Responds 200 whether or not the token was known or already revoked.
func (h *TokenHandler) LogoutHandler(c *gin.Context) {
	var req dto.RefreshRequest
	// An empty or unreadable body still logs out: there is simply nothing to revoke.
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := h.tokenUseCase.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	c.JSON(http.StatusOK, dto.LogoutResponse{Message: "Logged out successfully"})
}

// LogoutAllHandler revokes every refresh token of the caller.
// POST /v1/auth/logout-all - Requires authentication. Access tokens already issued stay valid
// until they expire.
func (h *TokenHandler) LogoutAllHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrNoToken, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.RevokeAllForSubject(c.Request.Context(), identity.SubjectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.LogoutResponse{
		Message:         "Logged out from all devices",
		RevokedSessions: &revoked,
	})
}
