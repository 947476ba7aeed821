// Package dto provides data transfer objects for user HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	customValidation "github.com/allisson/warden/internal/validation"
)

func roleRule(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := authDomain.ParseRole(s); err != nil {
		return validation.NewError("validation_role", "must be admin, editor or viewer")
	}
	return nil
}

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field
	Role     string `json:"role,omitempty"`
}

// Validate checks the request shape. Password strength is enforced by the use case.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.By(roleRule)),
	)
}

// ToDomain converts the request to a use case input.
func (r *RegisterRequest) ToDomain() *authDomain.RegisterUserInput {
	input := &authDomain.RegisterUserInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
	if role, err := authDomain.ParseRole(r.Role); err == nil {
		input.Role = role
	}
	return input
}

// UpdateProfileRequest contains the self-service profile fields. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"` //nolint:gosec // request field
}

// Validate requires at least one field.
func (r *UpdateProfileRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.Password == nil {
		return validation.NewError("validation_empty_update", "at least one of name, email or password is required")
	}
	return nil
}

// ToDomain converts the request to a use case input.
func (r *UpdateProfileRequest) ToDomain() *authDomain.UpdateProfileInput {
	return &authDomain.UpdateProfileInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// ChangeRoleRequest assigns a role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks if the change role request is valid.
func (r *ChangeRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Role, validation.Required, validation.By(roleRule)),
	)
}

// SetActiveRequest toggles an account.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// Validate checks if the set active request is valid.
func (r *SetActiveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IsActive, validation.NotNil),
	)
}
