// Package domain defines authentication and authorization domain models.
// Implements role based access control with capabilities, opaque refresh tokens,
// ownership scoping and signed audit logging.
package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/allisson/warden/internal/errors"
)

// Role is a named bundle of capabilities assigned to a user.
type Role string

const (
	// RoleAdmin holds the wildcard capability and bypasses ownership checks.
	RoleAdmin Role = "admin"

	// RoleEditor manages its own content.
	RoleEditor Role = "editor"

	// RoleViewer reads published content and its own profile.
	RoleViewer Role = "viewer"
)

// Roles returns the closed set of roles in privilege order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// ParseRole converts s into a Role, returning ErrInvalidRole for unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperrors.Wrapf(ErrInvalidRole, "unknown role %q", s)
	}
	return r, nil
}

// Capability names one permitted action on one resource kind, in the form "resource:action".
type Capability string

// WildcardCapability grants every capability, including ones added later.
const WildcardCapability Capability = "*"

const (
	PostsCreate Capability = "posts:create"
	PostsRead   Capability = "posts:read"
	PostsUpdate Capability = "posts:update"
	PostsDelete Capability = "posts:delete"

	UsersRead       Capability = "users:read"
	UsersCreate     Capability = "users:create"
	UsersUpdate     Capability = "users:update"
	UsersDelete     Capability = "users:delete"
	UsersAssignRole Capability = "users:assign-role"

	ProfileRead   Capability = "profile:read"
	ProfileUpdate Capability = "profile:update"

	AdminAccess Capability = "admin:access"
	AdminManage Capability = "admin:manage"
	AdminAudit  Capability = "admin:audit"
)

// IsWildcard reports whether c is the wildcard sentinel.
func (c Capability) IsWildcard() bool {
	return c == WildcardCapability
}

// Resource returns the part before the colon ("posts" for "posts:update").
func (c Capability) Resource() string {
	resource, _, _ := strings.Cut(string(c), ":")
	return resource
}

// ParseCapability validates the "resource:action" form. The wildcard is accepted as is.
func ParseCapability(s string) (Capability, error) {
	if s == string(WildcardCapability) {
		return WildcardCapability, nil
	}
	resource, action, ok := strings.Cut(s, ":")
	if !ok || resource == "" || action == "" || strings.Contains(action, ":") || strings.Contains(s, "*") {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("malformed capability %q", s))
	}
	return Capability(s), nil
}
