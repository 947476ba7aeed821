package service

import (
	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// VisibilityDefaults maps a resource type to the clause applied to read-only roles
// unless the caller already constrained the same field.
type VisibilityDefaults map[string]authDomain.Clause

// DefaultVisibility returns the built-in visibility defaults: viewers see published posts only.
func DefaultVisibility() VisibilityDefaults {
	return VisibilityDefaults{
		"posts": authDomain.Eq(authDomain.FieldStatus, "published"),
	}
}

type ownershipScoper struct {
	visibility VisibilityDefaults
}

// NewOwnershipScoper creates an OwnershipScoper. visibility is copied.
func NewOwnershipScoper(visibility VisibilityDefaults) OwnershipScoper {
	copied := make(VisibilityDefaults, len(visibility))
	for k, v := range visibility {
		copied[k] = v
	}
	return &ownershipScoper{visibility: copied}
}

func (s *ownershipScoper) ScopeFor(
	identity *authDomain.Identity,
	base authDomain.Filter,
	resourceType string,
) authDomain.Filter {
	if identity == nil || !identity.IsActive {
		return authDomain.MatchNone()
	}

	switch identity.Role {
	case authDomain.RoleAdmin:
		return base
	case authDomain.RoleEditor:
		return base.And(authDomain.Eq(authDomain.FieldOwnerID, identity.SubjectID))
	default:
		clause, ok := s.visibility[resourceType]
		if !ok || base.Has(clause.Field) {
			return base
		}
		return base.And(clause)
	}
}

func (s *ownershipScoper) IsOwner(identity *authDomain.Identity, owner any) bool {
	if identity == nil {
		return false
	}
	if identity.Role == authDomain.RoleAdmin {
		return true
	}
	ownerID, ok := authDomain.ReferenceID(owner)
	return ok && ownerID == identity.SubjectID
}
