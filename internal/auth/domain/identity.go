package domain

import (
	"github.com/google/uuid"
)

// Identity is the caller of a request, rebuilt from the live user record on every request.
type Identity struct {
	SubjectID uuid.UUID
	Role      Role
	Email     string
	IsActive  bool
}

// IdentityFromUser builds the identity for a user record.
func IdentityFromUser(user *User) *Identity {
	return &Identity{
		SubjectID: user.ID,
		Role:      user.Role,
		Email:     user.Email,
		IsActive:  user.IsActive,
	}
}

// AuthResult is the outcome of optional authentication: either an Identity or anonymous.
// Service failures are reported separately as errors and never produce an AuthResult.
type AuthResult struct {
	identity *Identity
	reason   string
}

// Authenticated wraps a resolved identity.
func Authenticated(identity *Identity) AuthResult {
	return AuthResult{identity: identity}
}

// Anonymous records why no identity was attached (one of the Code* constants).
func Anonymous(reason string) AuthResult {
	return AuthResult{reason: reason}
}

// Identity returns the resolved identity and true, or nil and false for anonymous callers.
func (r AuthResult) Identity() (*Identity, bool) {
	return r.identity, r.identity != nil
}

// IsAnonymous reports whether no identity was resolved.
func (r AuthResult) IsAnonymous() bool {
	return r.identity == nil
}

// Reason returns the denial code that made the caller anonymous, empty when authenticated
// or when no credentials were presented at all.
func (r AuthResult) Reason() string {
	return r.reason
}
