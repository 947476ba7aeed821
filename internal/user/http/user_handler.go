// Package http provides gin handlers for registration, profiles and admin user management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authHTTP "github.com/allisson/warden/internal/auth/http"
	authDto "github.com/allisson/warden/internal/auth/http/dto"
	"github.com/allisson/warden/internal/httputil"
	"github.com/allisson/warden/internal/user/http/dto"
	"github.com/allisson/warden/internal/user/usecase"
	customValidation "github.com/allisson/warden/internal/validation"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUseCase usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

func (h *UserHandler) caller(c *gin.Context) (*authDomain.Identity, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrNoToken, h.logger)
	}
	return identity, ok
}

func (h *UserHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid user id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// RegisterHandler creates an account.
// POST /v1/auth/register - Optional authentication; only callers holding users:assign-role may
// pick the role. Returns 201 Created.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	identity, _ := authHTTP.GetIdentity(c.Request.Context())
	user, err := h.userUseCase.Register(c.Request.Context(), identity, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, authDto.MapUserToResponse(user))
}

// GetProfileHandler returns the caller's account.
// GET /v1/auth/profile - Requires profile:read.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), identity.SubjectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, authDto.MapUserToResponse(user))
}

// UpdateProfileHandler changes the caller's name, email or password.
// PUT /v1/auth/profile - Requires profile:update. A password change ends every session.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.UpdateProfile(c.Request.Context(), identity, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, authDto.MapUserToResponse(user))
}

// ListHandler lists users newest first.
// GET /v1/admin/users?role=editor&is_active=true&offset=0&limit=50 - Requires users:read.
func (h *UserHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := &authDomain.UserListFilter{Offset: offset, Limit: limit}

	if raw := c.Query("role"); raw != "" {
		role, err := authDomain.ParseRole(raw)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		filter.Role = &role
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid is_active parameter: must be a boolean"), h.logger)
			return
		}
		filter.IsActive = &active
	}

	users, err := h.userUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users))
}

// ChangeRoleHandler assigns a role.
// PATCH /v1/admin/users/:id/role - Requires users:assign-role. The user's sessions are revoked.
func (h *UserHandler) ChangeRoleHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}
	role, err := authDomain.ParseRole(req.Role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.ChangeRole(c.Request.Context(), identity, userID, role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, authDto.MapUserToResponse(user))
}

// SetActiveHandler activates or deactivates an account.
// PATCH /v1/admin/users/:id/status - Requires users:update. Deactivation revokes the user's sessions.
func (h *UserHandler) SetActiveHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.SetActive(c.Request.Context(), identity, userID, *req.IsActive)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, authDto.MapUserToResponse(user))
}
