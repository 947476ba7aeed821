package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	appValidation "github.com/allisson/warden/internal/validation"
)

const resourceUser = "user"

var (
	nameRules = []validation.Rule{
		validation.Required.Error("name is required"),
		appValidation.NotBlank,
		validation.Length(2, 100).Error("name must be between 2 and 100 characters"),
	}
	emailRules = []validation.Rule{
		validation.Required.Error("email is required"),
		appValidation.Email,
		validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
	}
	passwordRules = []validation.Rule{
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		appValidation.DefaultPasswordStrength,
	}
)

type userUseCase struct {
	userRepo        UserRepository
	passwordService authService.PasswordService
	registry        authService.CapabilityRegistry
	sessions        SessionRevoker
	audit           AuditRecorder
	storeTimeout    time.Duration
	now             func() time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validRole(value any) error {
	role, _ := value.(authDomain.Role)
	if role == "" || role.Valid() {
		return nil
	}
	return validation.NewError("validation_role", "role must be admin, editor or viewer")
}

func (u *userUseCase) store(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (u *userUseCase) record(
	ctx context.Context,
	action string,
	caller *authDomain.Identity,
	user *authDomain.User,
	status int,
	metadata map[string]any,
) {
	subjectID := user.ID
	if caller != nil {
		subjectID = caller.SubjectID
	}
	resourceID := user.ID.String()
	u.audit.Record(ctx, &authDomain.AuditEvent{
		Action:       action,
		SubjectID:    &subjectID,
		ResourceType: resourceUser,
		ResourceID:   &resourceID,
		StatusCode:   &status,
		Metadata:     metadata,
	})
}

// Register validates the input, hashes the password and stores the user.
func (u *userUseCase) Register(
	ctx context.Context,
	caller *authDomain.Identity,
	input *authDomain.RegisterUserInput,
) (*authDomain.User, error) {
	in := *input
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules...),
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.Role, validation.By(validRole)),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	role := authDomain.RoleViewer
	if in.Role != "" && caller != nil && u.registry.HasCapability(caller.Role, authDomain.UsersAssignRole) {
		role = in.Role
	}

	passwordHash, err := u.passwordService.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	now := u.now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.store(ctx, func(ctx context.Context) error {
		return u.userRepo.Create(ctx, user)
	}); err != nil {
		return nil, err
	}

	var createdBy any
	if caller != nil {
		createdBy = caller.SubjectID.String()
	}
	u.record(ctx, authDomain.ActionUserCreate, caller, user, http.StatusCreated, map[string]any{
		"email":     user.Email,
		"role":      string(user.Role),
		"createdBy": createdBy,
	})

	return user, nil
}

// Get retrieves a user by ID.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	return database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) (*authDomain.User, error) {
		return u.userRepo.Get(ctx, userID)
	})
}

// List retrieves users newest first.
func (u *userUseCase) List(
	ctx context.Context,
	filter *authDomain.UserListFilter,
) ([]*authDomain.User, error) {
	return database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) ([]*authDomain.User, error) {
		return u.userRepo.List(ctx, filter)
	})
}

// UpdateProfile applies the provided fields to the caller's own account.
func (u *userUseCase) UpdateProfile(
	ctx context.Context,
	caller *authDomain.Identity,
	input *authDomain.UpdateProfileInput,
) (*authDomain.User, error) {
	if caller == nil {
		return nil, authDomain.ErrNoToken
	}

	user, err := u.Get(ctx, caller.SubjectID)
	if err != nil {
		return nil, err
	}

	updated := *user
	fields := make([]string, 0, 3)
	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
		fields = append(fields, "name")
	}
	if input.Email != nil {
		updated.Email = normalizeEmail(*input.Email)
		fields = append(fields, "email")
	}

	errs := validation.Errors{
		"name":  validation.Validate(updated.Name, nameRules...),
		"email": validation.Validate(updated.Email, emailRules...),
	}
	if input.Password != nil {
		errs["password"] = validation.Validate(*input.Password, passwordRules...)
	}
	if err := appValidation.WrapValidationError(errs.Filter()); err != nil {
		return nil, err
	}

	if input.Password != nil {
		updated.PasswordHash, err = u.passwordService.HashPassword(*input.Password)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to hash password")
		}
		fields = append(fields, "password")
	}

	if len(fields) == 0 {
		return user, nil
	}

	updated.UpdatedAt = u.now().UTC()
	if err := u.store(ctx, func(ctx context.Context) error {
		return u.userRepo.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}

	metadata := map[string]any{"fields": fields}
	if input.Password != nil {
		revoked, err := u.sessions.RevokeAllForSubject(ctx, updated.ID)
		if err != nil {
			return nil, err
		}
		metadata["revokedSessions"] = revoked
	}

	u.record(ctx, authDomain.ActionProfileUpdate, caller, &updated, http.StatusOK, metadata)
	return &updated, nil
}

// ChangeRole assigns a new role. Tokens issued under the old role stop refreshing.
func (u *userUseCase) ChangeRole(
	ctx context.Context,
	caller *authDomain.Identity,
	userID uuid.UUID,
	role authDomain.Role,
) (*authDomain.User, error) {
	if !role.Valid() {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidRole, "unknown role %q", role)
	}

	user, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	updated := *user
	updated.Role = role
	updated.UpdatedAt = u.now().UTC()
	if err := u.store(ctx, func(ctx context.Context) error {
		return u.userRepo.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}

	revoked, err := u.sessions.RevokeAllForSubject(ctx, updated.ID)
	if err != nil {
		return nil, err
	}

	u.record(ctx, authDomain.ActionUserRoleChange, caller, &updated, http.StatusOK, map[string]any{
		"from":            string(user.Role),
		"to":              string(role),
		"revokedSessions": revoked,
	})
	return &updated, nil
}

// SetActive toggles the account. Deactivated users fail authentication on their next request.
func (u *userUseCase) SetActive(
	ctx context.Context,
	caller *authDomain.Identity,
	userID uuid.UUID,
	active bool,
) (*authDomain.User, error) {
	user, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}

	updated := *user
	updated.IsActive = active
	updated.UpdatedAt = u.now().UTC()
	if err := u.store(ctx, func(ctx context.Context) error {
		return u.userRepo.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}

	metadata := map[string]any{"isActive": active}
	if !active {
		revoked, err := u.sessions.RevokeAllForSubject(ctx, updated.ID)
		if err != nil {
			return nil, err
		}
		metadata["revokedSessions"] = revoked
	}

	u.record(ctx, authDomain.ActionUserStatusChange, caller, &updated, http.StatusOK, metadata)
	return &updated, nil
}

// NewUserUseCase creates a UserUseCase.
func NewUserUseCase(
	userRepo UserRepository,
	passwordService authService.PasswordService,
	registry authService.CapabilityRegistry,
	sessions SessionRevoker,
	audit AuditRecorder,
	storeTimeout time.Duration,
) UserUseCase {
	return &userUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		registry:        registry,
		sessions:        sessions,
		audit:           audit,
		storeTimeout:    storeTimeout,
		now:             time.Now,
	}
}
