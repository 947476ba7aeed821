// Package service provides technical services for authentication and authorization.
//
// It holds the pieces that need no persistence: the role capability registry, access
// token signing, opaque refresh token generation, password hashing, ownership scoping
// and audit log signing.
package service

import (
	"time"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// CapabilityRegistry answers which capabilities a role holds. Implementations are immutable
// after construction and safe for concurrent use.
type CapabilityRegistry interface {
	// HasCapability reports whether role holds the wildcard or exactly capability.
	// Unknown roles hold nothing.
	HasCapability(role authDomain.Role, capability authDomain.Capability) bool

	// CapabilitiesOf returns a copy of the capabilities configured for role, in configuration order.
	CapabilitiesOf(role authDomain.Role) []authDomain.Capability
}

// AccessTokenService signs and verifies short-lived stateless access tokens.
type AccessTokenService interface {
	// Issue signs a token for identity. An error here means the signing key is misconfigured.
	Issue(identity *authDomain.Identity) (*authDomain.IssuedAccessToken, error)

	// Verify checks signature, algorithm, issuer, audience and expiry. Every failure is
	// reported as ErrTokenInvalid so callers cannot tell tampering from expiry.
	Verify(token string) (*authDomain.AccessClaims, error)

	// TTL returns the lifetime of issued tokens.
	TTL() time.Duration
}

// TokenService defines operations for opaque refresh token generation and hashing.
// Implementations must use cryptographically secure random generation and
// fast hashing algorithms suitable for lookup (e.g., SHA-256).
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (to be shared with the client) and
	// the hashed version (to be stored).
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain text token using SHA-256.
	HashToken(plainToken string) string
}

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password with Argon2id.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword reports whether plainPassword matches hashedPassword.
	ComparePassword(plainPassword string, hashedPassword string) bool
}

// OwnershipScoper derives data access predicates and ownership decisions from an identity.
type OwnershipScoper interface {
	// ScopeFor narrows base to what identity may see for resourceType.
	// A nil identity yields a filter that matches nothing.
	ScopeFor(identity *authDomain.Identity, base authDomain.Filter, resourceType string) authDomain.Filter

	// IsOwner reports whether identity may act on a resource owned by owner.
	// owner may be a uuid.UUID, its string form or a populated authDomain.Referenced object.
	IsOwner(identity *authDomain.Identity, owner any) bool
}

// AuditSigner signs and verifies audit log records.
type AuditSigner interface {
	// Sign returns the HMAC-SHA256 signature of log under a key derived from rootKey.
	Sign(rootKey []byte, log *authDomain.AuditLog) ([]byte, error)

	// Verify returns ErrSignatureInvalid when log.Signature does not match its content.
	Verify(rootKey []byte, log *authDomain.AuditLog) error
}
