package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClientMetadata describes the client a refresh token was issued to.
type ClientMetadata struct {
	IPAddress string
	UserAgent string
}

// RefreshToken is a persisted long-lived credential. Only the SHA-256 hash of the opaque
// value handed to the client is stored.
type RefreshToken struct {
	ID             uuid.UUID
	TokenHash      string
	SubjectID      uuid.UUID
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	CreatedAt      time.Time
	ClientMetadata ClientMetadata
}

// IsRevoked reports whether the token was explicitly revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsUsable reports whether the token is neither revoked nor expired at now.
// A token whose expiry equals now is already unusable.
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return !t.IsRevoked() && t.ExpiresAt.After(now)
}

// AccessClaims is the claim set recovered from a verified access token.
type AccessClaims struct {
	SubjectID uuid.UUID
	Role      Role
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedAccessToken is a signed access token with its expiry.
type IssuedAccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// IssuedRefreshToken is the plain opaque refresh token (shown once) with its expiry.
type IssuedRefreshToken struct {
	PlainToken string
	ExpiresAt  time.Time
}

// LoginInput contains credentials and client details for a login.
type LoginInput struct {
	Email          string
	Password       string
	ClientMetadata ClientMetadata
}

// Session is what login and refresh return to the client.
// RefreshToken is nil on refresh unless rotation is enabled.
type Session struct {
	AccessToken  IssuedAccessToken
	RefreshToken *IssuedRefreshToken
	User         *User
}
