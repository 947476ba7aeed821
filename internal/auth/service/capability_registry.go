package service

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	apperrors "github.com/allisson/warden/internal/errors"
)

// RoleMatrix maps each role to the capabilities it holds.
type RoleMatrix map[authDomain.Role][]authDomain.Capability

// DefaultRoleMatrix returns the built-in role matrix.
func DefaultRoleMatrix() RoleMatrix {
	return RoleMatrix{
		authDomain.RoleAdmin: {authDomain.WildcardCapability},
		authDomain.RoleEditor: {
			authDomain.PostsCreate,
			authDomain.PostsRead,
			authDomain.PostsUpdate,
			authDomain.PostsDelete,
			authDomain.ProfileRead,
			authDomain.ProfileUpdate,
		},
		authDomain.RoleViewer: {
			authDomain.PostsRead,
			authDomain.ProfileRead,
		},
	}
}

// roleMatrixFile is the YAML layout accepted by LoadRoleMatrix:
//
//	roles:
//	  admin: ["*"]
//	  editor: [posts:create, posts:read]
type roleMatrixFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// ParseRoleMatrix decodes and validates a YAML role matrix.
func ParseRoleMatrix(data []byte) (RoleMatrix, error) {
	var file roleMatrixFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode role matrix")
	}
	if len(file.Roles) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "role matrix defines no roles")
	}

	matrix := make(RoleMatrix, len(file.Roles))
	for name, capabilities := range file.Roles {
		role, err := authDomain.ParseRole(name)
		if err != nil {
			return nil, err
		}
		parsed := make([]authDomain.Capability, 0, len(capabilities))
		for _, c := range capabilities {
			capability, err := authDomain.ParseCapability(c)
			if err != nil {
				return nil, apperrors.Wrapf(err, "role %s", role)
			}
			parsed = append(parsed, capability)
		}
		matrix[role] = parsed
	}
	return matrix, nil
}

// LoadRoleMatrix reads a YAML role matrix from path.
func LoadRoleMatrix(path string) (RoleMatrix, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied configuration path
	if err != nil {
		return nil, fmt.Errorf("failed to read role matrix file: %w", err)
	}
	return ParseRoleMatrix(data)
}

type capabilityRegistry struct {
	wildcard map[authDomain.Role]bool
	granted  map[authDomain.Role]map[authDomain.Capability]struct{}
	ordered  map[authDomain.Role][]authDomain.Capability
}

// NewCapabilityRegistry builds an immutable registry from matrix. The matrix is copied.
func NewCapabilityRegistry(matrix RoleMatrix) CapabilityRegistry {
	r := &capabilityRegistry{
		wildcard: make(map[authDomain.Role]bool, len(matrix)),
		granted:  make(map[authDomain.Role]map[authDomain.Capability]struct{}, len(matrix)),
		ordered:  make(map[authDomain.Role][]authDomain.Capability, len(matrix)),
	}
	for role, capabilities := range matrix {
		set := make(map[authDomain.Capability]struct{}, len(capabilities))
		ordered := make([]authDomain.Capability, 0, len(capabilities))
		for _, c := range capabilities {
			if c.IsWildcard() {
				r.wildcard[role] = true
			} else {
				set[c] = struct{}{}
			}
			if !slices.Contains(ordered, c) {
				ordered = append(ordered, c)
			}
		}
		r.granted[role] = set
		r.ordered[role] = ordered
	}
	return r
}

func (r *capabilityRegistry) HasCapability(role authDomain.Role, capability authDomain.Capability) bool {
	if r.wildcard[role] {
		return true
	}
	_, ok := r.granted[role][capability]
	return ok
}

func (r *capabilityRegistry) CapabilitiesOf(role authDomain.Role) []authDomain.Capability {
	return slices.Clone(r.ordered[role])
}
