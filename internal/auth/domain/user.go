package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Role and IsActive are read on every request.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReferenceID lets a loaded user stand in as a populated owner reference.
func (u *User) ReferenceID() uuid.UUID {
	if u == nil {
		return uuid.Nil
	}
	return u.ID
}

// RegisterUserInput contains the parameters for creating a user.
// Role is honoured only when the caller may assign roles; otherwise viewer is used.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UpdateProfileInput contains the self-service profile fields. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserListFilter narrows admin user listings.
type UserListFilter struct {
	Role     *Role
	IsActive *bool
	Offset   int
	Limit    int
}
