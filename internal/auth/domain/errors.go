package domain

import (
	"fmt"

	apperrors "github.com/allisson/warden/internal/errors"
)

// Machine-readable reason codes returned to clients.
const (
	CodeNoToken             = "NO_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInactiveUser        = "INACTIVE_USER"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeForbiddenOwnership  = "FORBIDDEN_OWNERSHIP"
)

// Authentication errors. All of them map to 401.
var (
	// ErrNoToken indicates the request carried no usable bearer token.
	ErrNoToken = apperrors.WithCode(apperrors.Wrap(apperrors.ErrUnauthorized, "no token provided"), CodeNoToken)

	// ErrTokenInvalid covers malformed, tampered, wrongly issued and expired access tokens alike.
	ErrTokenInvalid = apperrors.WithCode(
		apperrors.Wrap(apperrors.ErrUnauthorized, "invalid or expired token"),
		CodeInvalidToken,
	)

	// ErrInactiveUser indicates the token subject no longer exists or was deactivated.
	ErrInactiveUser = apperrors.WithCode(
		apperrors.Wrap(apperrors.ErrUnauthorized, "user not found or inactive"),
		CodeInactiveUser,
	)

	// ErrRefreshTokenInvalid covers unknown, revoked and expired refresh tokens alike.
	ErrRefreshTokenInvalid = apperrors.WithCode(
		apperrors.Wrap(apperrors.ErrUnauthorized, "invalid refresh token"),
		CodeInvalidRefreshToken,
	)

	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = apperrors.WithCode(
		apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials"),
		CodeInvalidCredentials,
	)
)

// Authorization errors.
var (
	// ErrForbiddenOwnership indicates the caller tried to act on a resource owned by someone else.
	ErrForbiddenOwnership = apperrors.WithCode(
		apperrors.Wrap(apperrors.ErrForbidden, "you can only modify your own resources"),
		CodeForbiddenOwnership,
	)
)

// Lookup and input errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")

	// ErrRefreshTokenNotFound is returned by refresh token stores. Use cases translate it to
	// ErrRefreshTokenInvalid.
	ErrRefreshTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "refresh token not found")

	// ErrEmailAlreadyExists indicates a user with the same email is already registered.
	ErrEmailAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "email already registered")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role")

	// ErrSignatureInvalid indicates an audit log signature does not match its content.
	ErrSignatureInvalid = apperrors.New("audit log signature is invalid")
)

// CapabilityDeniedError is returned when the caller's role lacks the capability a route requires.
type CapabilityDeniedError struct {
	Required Capability
}

func (e *CapabilityDeniedError) Error() string {
	return fmt.Sprintf("missing capability %s: %v", e.Required, apperrors.ErrForbidden)
}

func (e *CapabilityDeniedError) Unwrap() error { return apperrors.ErrForbidden }

// ErrorCode implements the coded error contract used by the HTTP layer.
func (e *CapabilityDeniedError) ErrorCode() string { return CodeForbidden }

// RequiredCapability exposes the missing capability to the HTTP layer.
func (e *CapabilityDeniedError) RequiredCapability() string { return string(e.Required) }

// NewCapabilityDeniedError builds the denial for a missing capability.
func NewCapabilityDeniedError(required Capability) error {
	return &CapabilityDeniedError{Required: required}
}
