// Package usecase implements user account management: registration, profiles, role
// assignment and activation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// UserRepository persists users. Implementations return ErrUserNotFound for missing users and
// ErrEmailAlreadyExists when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *authDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)
	List(ctx context.Context, filter *authDomain.UserListFilter) ([]*authDomain.User, error)
	Update(ctx context.Context, user *authDomain.User) error
}

// SessionRevoker ends every refresh token session of a user.
type SessionRevoker interface {
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error)
}

// AuditRecorder appends audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, event *authDomain.AuditEvent)
}

// UserUseCase manages user accounts.
type UserUseCase interface {
	// Register creates an account. Only callers holding users:assign-role may choose the role;
	// everyone else, including anonymous callers, gets viewer.
	Register(
		ctx context.Context,
		caller *authDomain.Identity,
		input *authDomain.RegisterUserInput,
	) (*authDomain.User, error)

	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	List(ctx context.Context, filter *authDomain.UserListFilter) ([]*authDomain.User, error)

	// UpdateProfile changes the caller's own name, email or password. A password change
	// revokes every session of the caller.
	UpdateProfile(
		ctx context.Context,
		caller *authDomain.Identity,
		input *authDomain.UpdateProfileInput,
	) (*authDomain.User, error)

	// ChangeRole assigns role to the user and revokes the user's sessions.
	ChangeRole(
		ctx context.Context,
		caller *authDomain.Identity,
		userID uuid.UUID,
		role authDomain.Role,
	) (*authDomain.User, error)

	// SetActive activates or deactivates the user. Deactivation revokes the user's sessions.
	SetActive(ctx context.Context, caller *authDomain.Identity, userID uuid.UUID, active bool) (*authDomain.User, error)
}
