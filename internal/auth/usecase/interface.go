// Package usecase defines business logic interfaces for authentication and authorization operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// UserRepository is the read side of user persistence the auth core needs.
// Implementations return ErrUserNotFound when no user matches.
type UserRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)
}

// RefreshTokenRepository persists refresh tokens by hash.
// Implementations must support transaction-aware operations via context propagation where
// the backend has transactions.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// GetActiveByTokenHash returns the token only if it is unrevoked and expires after now.
	// Unknown, revoked and expired tokens all yield ErrRefreshTokenNotFound.
	GetActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*authDomain.RefreshToken, error)

	// Revoke marks the token revoked if it is still unrevoked, as a single atomic
	// compare-and-set. Returns whether this call performed the revocation.
	Revoke(ctx context.Context, tokenHash string, now time.Time) (bool, error)

	// RevokeAllForSubject revokes every unrevoked token of subjectID and returns how many changed.
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID, now time.Time) (int64, error)

	// DeleteExpired removes tokens that expired before the given time and returns the count.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditLogRepository persists audit logs. Records are never updated.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *authDomain.AuditLog) error

	// List returns matching logs ordered by created_at descending (newest first).
	List(ctx context.Context, filter *authDomain.AuditLogFilter) ([]*authDomain.AuditLog, error)
}

// TokenUseCase issues, verifies and revokes access and refresh tokens.
type TokenUseCase interface {
	// Login checks credentials and opens a session. Unknown emails and wrong passwords both
	// yield ErrInvalidCredentials; inactive accounts yield ErrInactiveUser.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Session, error)

	// IssueAccessToken signs a short-lived access token for identity.
	IssueAccessToken(identity *authDomain.Identity) (*authDomain.IssuedAccessToken, error)

	// VerifyAccessToken returns the claims of a valid token or ErrTokenInvalid.
	VerifyAccessToken(token string) (*authDomain.AccessClaims, error)

	// IssueRefreshToken creates and persists a new opaque refresh token.
	IssueRefreshToken(
		ctx context.Context,
		identity *authDomain.Identity,
		clientMetadata authDomain.ClientMetadata,
	) (*authDomain.IssuedRefreshToken, error)

	// VerifyRefreshToken returns the stored record or ErrRefreshTokenInvalid.
	VerifyRefreshToken(ctx context.Context, plainToken string) (*authDomain.RefreshToken, error)

	// Refresh exchanges a refresh token for a new access token, re-checking the live user.
	Refresh(
		ctx context.Context,
		plainToken string,
		clientMetadata authDomain.ClientMetadata,
	) (*authDomain.Session, error)

	// RevokeRefreshToken revokes one token. Unknown and already revoked tokens are not an error.
	RevokeRefreshToken(ctx context.Context, plainToken string) error

	// RevokeAllForSubject revokes every session of subjectID and returns how many were revoked.
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error)

	// PurgeExpired deletes refresh tokens that expired before the given time.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// GuardUseCase turns bearer tokens into identities and admits or denies them.
type GuardUseCase interface {
	// Authenticate resolves the live identity behind bearerToken. Denials are ErrNoToken,
	// ErrTokenInvalid or ErrInactiveUser; store failures surface as ErrServiceUnavailable.
	Authenticate(ctx context.Context, bearerToken string) (*authDomain.Identity, error)

	// AuthenticateOptional behaves like Authenticate but reports denials as an anonymous result.
	// The returned error is non-nil only when the decision could not be made.
	AuthenticateOptional(ctx context.Context, bearerToken string) (authDomain.AuthResult, error)

	// Authorize returns a CapabilityDeniedError when identity's role lacks capability.
	Authorize(ctx context.Context, identity *authDomain.Identity, capability authDomain.Capability) error

	// AuthorizeOwnership loads the target resource and checks identity owns it.
	// Loader errors are returned as is, so a missing resource is reported before ownership.
	AuthorizeOwnership(
		ctx context.Context,
		identity *authDomain.Identity,
		resourceType string,
		resourceID string,
		load func(ctx context.Context) (authDomain.Owned, error),
	) (authDomain.Owned, error)
}

// AuditLogUseCase is the append-only audit sink.
type AuditLogUseCase interface {
	// Record signs and appends one entry. Failures are logged and never returned, so recording
	// cannot change the outcome of the operation being audited.
	Record(ctx context.Context, event *authDomain.AuditEvent)

	// List retrieves audit logs newest first.
	List(ctx context.Context, filter *authDomain.AuditLogFilter) ([]*authDomain.AuditLog, error)

	// VerifyBatch checks signatures of the logs matching filter.
	VerifyBatch(ctx context.Context, filter *authDomain.AuditLogFilter) (*authDomain.AuditVerificationReport, error)
}
