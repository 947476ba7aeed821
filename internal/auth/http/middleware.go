package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authUseCase "github.com/allisson/warden/internal/auth/usecase"
	"github.com/allisson/warden/internal/httputil"
)

// CorrelationIDHeader carries the id joining every log line and audit record of one request.
const CorrelationIDHeader = "X-Correlation-ID"

// OwnedLoader loads the resource addressed by a route parameter.
type OwnedLoader func(ctx context.Context, resourceID string) (authDomain.Owned, error)

// CorrelationIDMiddleware accepts the caller's X-Correlation-ID or generates a UUIDv7, echoes it
// in the response and stores the request details used by audit records.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return requestid.New(
		requestid.WithCustomHeaderStrKey(requestid.HeaderStrKey(CorrelationIDHeader)),
		requestid.WithGenerator(func() string {
			return uuid.Must(uuid.NewV7()).String()
		}),
		requestid.WithHandler(func(c *gin.Context, correlationID string) {
			ctx := authDomain.WithRequestInfo(c.Request.Context(), authDomain.RequestInfo{
				CorrelationID: correlationID,
				HTTPMethod:    c.Request.Method,
				Path:          c.Request.URL.Path,
				IPAddress:     c.ClientIP(),
				UserAgent:     c.Request.UserAgent(),
			})
			c.Request = c.Request.WithContext(ctx)
		}),
	)
}

// bearerToken extracts the token from "Authorization: Bearer <token>" (scheme is case-insensitive).
// A missing or malformed header yields "".
func bearerToken(c *gin.Context) string {
	const bearerPrefix = "bearer "
	header := c.GetHeader("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// AuthenticationMiddleware requires a valid access token whose subject is still active.
// Denials respond 401 with NO_TOKEN, INVALID_TOKEN or INACTIVE_USER.
//
// Usage:
//
//	router.GET("/v1/auth/profile", AuthenticationMiddleware(guard, logger), handler)
func AuthenticationMiddleware(guard authUseCase.GuardUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := guard.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))

		logger.Debug("authentication successful",
			slog.String("subject_id", identity.SubjectID.String()),
			slog.String("role", string(identity.Role)))

		c.Next()
	}
}

// OptionalAuthenticationMiddleware attaches the caller when a valid token is presented and
// continues anonymously otherwise. Only store failures stop the request.
func OptionalAuthenticationMiddleware(guard authUseCase.GuardUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := guard.AuthenticateOptional(c.Request.Context(), bearerToken(c))
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if identity, ok := result.Identity(); ok {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		}

		c.Next()
	}
}

// RequireCapability admits callers whose role holds capability and responds 403 with the
// required capability otherwise. MUST run after AuthenticationMiddleware.
func RequireCapability(
	guard authUseCase.GuardUseCase,
	capability authDomain.Capability,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := GetIdentity(c.Request.Context())
		if err := guard.Authorize(c.Request.Context(), identity, capability); err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOwnership loads the resource named by the route parameter param and admits its owner
// or an admin. The loaded resource is available to handlers through GetResource.
// A missing resource responds 404 before any ownership decision.
func RequireOwnership(
	guard authUseCase.GuardUseCase,
	resourceType string,
	param string,
	load OwnedLoader,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		identity, _ := GetIdentity(ctx)
		resourceID := c.Param(param)

		resource, err := guard.AuthorizeOwnership(ctx, identity, resourceType, resourceID,
			func(ctx context.Context) (authDomain.Owned, error) {
				return load(ctx, resourceID)
			},
		)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithResource(ctx, resource))
		c.Next()
	}
}
