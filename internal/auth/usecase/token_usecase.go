// Package usecase implements business logic orchestration for authentication and authorization.
package usecase

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
	"github.com/allisson/warden/internal/config"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

// tokenUseCase implements TokenUseCase for access and refresh tokens.
type tokenUseCase struct {
	config          *config.Config
	txManager       database.TxManager
	userRepo        UserRepository
	refreshRepo     RefreshTokenRepository
	accessTokens    authService.AccessTokenService
	tokenService    authService.TokenService
	passwordService authService.PasswordService
	auditLogUseCase AuditLogUseCase
	now             func() time.Time
	// decoyHash is compared against when the email is unknown so that both login failures
	// pay for one password hash comparison.
	decoyHash func() string
}

const decoyPassword = "warden-decoy-password"

func (t *tokenUseCase) timeNow() time.Time {
	return t.now().UTC()
}

// Login authenticates a user by email and password and opens a session.
//
// Security Notes:
//   - Returns ErrInvalidCredentials for both unknown emails and wrong passwords
//     to prevent user enumeration attacks
//   - Returns ErrInactiveUser only after the password matched
//   - Every attempt is audited as auth:login with its outcome
func (t *tokenUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Session, error) {
	user, err := database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (*authDomain.User, error) {
		return t.userRepo.GetByEmail(ctx, input.Email)
	})
	if err != nil {
		if apperrors.IsDecided(err, authDomain.ErrUserNotFound) {
			t.passwordService.ComparePassword(input.Password, t.decoyHash())
			t.auditLoginFailure(ctx, nil, authDomain.CodeInvalidCredentials)
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.passwordService.ComparePassword(input.Password, user.PasswordHash) {
		t.auditLoginFailure(ctx, &user.ID, authDomain.CodeInvalidCredentials)
		return nil, authDomain.ErrInvalidCredentials
	}

	if !user.IsActive {
		t.auditLoginFailure(ctx, &user.ID, authDomain.CodeInactiveUser)
		return nil, authDomain.ErrInactiveUser
	}

	identity := authDomain.IdentityFromUser(user)

	accessToken, err := t.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := t.IssueRefreshToken(ctx, identity, input.ClientMetadata)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	t.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthLogin,
		SubjectID:    &user.ID,
		ResourceType: "auth",
		StatusCode:   &status,
		Metadata:     map[string]any{"outcome": "success"},
	})

	return &authDomain.Session{
		AccessToken:  *accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (t *tokenUseCase) auditLoginFailure(ctx context.Context, subjectID *uuid.UUID, reason string) {
	status := http.StatusUnauthorized
	t.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthLogin,
		SubjectID:    subjectID,
		ResourceType: "auth",
		StatusCode:   &status,
		Metadata:     map[string]any{"outcome": "failure", "reason": reason},
	})
}

// IssueAccessToken signs a new access token. A signing failure is a service failure.
func (t *tokenUseCase) IssueAccessToken(identity *authDomain.Identity) (*authDomain.IssuedAccessToken, error) {
	token, err := t.accessTokens.Issue(identity)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue access token")
	}
	return token, nil
}

// VerifyAccessToken checks an access token. Every failure is ErrTokenInvalid.
func (t *tokenUseCase) VerifyAccessToken(token string) (*authDomain.AccessClaims, error) {
	return t.accessTokens.Verify(token)
}

// IssueRefreshToken generates an opaque refresh token and stores its hash.
// The plain token is only returned once.
func (t *tokenUseCase) IssueRefreshToken(
	ctx context.Context,
	identity *authDomain.Identity,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.IssuedRefreshToken, error) {
	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate refresh token")
	}

	now := t.timeNow()
	token := &authDomain.RefreshToken{
		ID:             uuid.Must(uuid.NewV7()),
		TokenHash:      tokenHash,
		SubjectID:      identity.SubjectID,
		ExpiresAt:      now.Add(t.config.RefreshTokenExpiration),
		CreatedAt:      now,
		ClientMetadata: clientMetadata,
	}

	_, err = database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.refreshRepo.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.IssuedRefreshToken{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// VerifyRefreshToken returns the stored record of an unrevoked, unexpired token.
// Unknown, revoked and expired tokens all yield ErrRefreshTokenInvalid.
func (t *tokenUseCase) VerifyRefreshToken(ctx context.Context, plainToken string) (*authDomain.RefreshToken, error) {
	if plainToken == "" {
		return nil, authDomain.ErrRefreshTokenInvalid
	}

	tokenHash := t.tokenService.HashToken(plainToken)
	token, err := database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (*authDomain.RefreshToken, error) {
		return t.refreshRepo.GetActiveByTokenHash(ctx, tokenHash, t.timeNow())
	})
	if err != nil {
		if apperrors.IsDecided(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrRefreshTokenInvalid
		}
		return nil, err
	}
	return token, nil
}

// Refresh exchanges a refresh token for a new access token.
//
// The subject is re-resolved from the user store: a missing or deactivated user gets the
// presented token revoked and ErrInactiveUser. With rotation enabled the presented token is
// revoked and a new one issued inside one transaction; losing the revoke race means the
// token was already spent and yields ErrRefreshTokenInvalid.
func (t *tokenUseCase) Refresh(
	ctx context.Context,
	plainToken string,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.Session, error) {
	token, err := t.VerifyRefreshToken(ctx, plainToken)
	if err != nil {
		return nil, err
	}

	user, err := database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (*authDomain.User, error) {
		return t.userRepo.Get(ctx, token.SubjectID)
	})
	if err != nil && !apperrors.IsDecided(err, authDomain.ErrUserNotFound) {
		return nil, err
	}
	if err != nil || !user.IsActive {
		if _, revokeErr := t.revoke(ctx, token.TokenHash); revokeErr != nil {
			return nil, revokeErr
		}
		return nil, authDomain.ErrInactiveUser
	}

	identity := authDomain.IdentityFromUser(user)

	var rotated *authDomain.IssuedRefreshToken
	if t.config.RefreshTokenRotation {
		err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
			revoked, err := t.revoke(ctx, token.TokenHash)
			if err != nil {
				return err
			}
			if !revoked {
				return authDomain.ErrRefreshTokenInvalid
			}

			rotated, err = t.IssueRefreshToken(ctx, identity, clientMetadata)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	accessToken, err := t.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	t.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthRefresh,
		SubjectID:    &user.ID,
		ResourceType: "auth",
		StatusCode:   &status,
		Metadata:     map[string]any{"rotated": rotated != nil},
	})

	return &authDomain.Session{
		AccessToken:  *accessToken,
		RefreshToken: rotated,
		User:         user,
	}, nil
}

func (t *tokenUseCase) revoke(ctx context.Context, tokenHash string) (bool, error) {
	return database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (bool, error) {
		return t.refreshRepo.Revoke(ctx, tokenHash, t.timeNow())
	})
}

// RevokeRefreshToken revokes a single refresh token. Revoking an unknown, expired or
// already revoked token succeeds without effect.
func (t *tokenUseCase) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	if plainToken == "" {
		return nil
	}

	var subjectID *uuid.UUID
	token, err := t.VerifyRefreshToken(ctx, plainToken)
	switch {
	case err == nil:
		subjectID = &token.SubjectID
	case !apperrors.Is(err, authDomain.ErrRefreshTokenInvalid):
		return err
	}

	revoked, err := t.revoke(ctx, t.tokenService.HashToken(plainToken))
	if err != nil {
		return err
	}

	status := http.StatusOK
	t.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthLogout,
		SubjectID:    subjectID,
		ResourceType: "auth",
		StatusCode:   &status,
		Metadata:     map[string]any{"revoked": revoked},
	})
	return nil
}

// RevokeAllForSubject revokes every active refresh token of the subject.
// Access tokens already issued stay valid until they expire.
func (t *tokenUseCase) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	count, err := database.WithStore(ctx, t.config.StoreTimeout, func(ctx context.Context) (int64, error) {
		return t.refreshRepo.RevokeAllForSubject(ctx, subjectID, t.timeNow())
	})
	if err != nil {
		return 0, err
	}

	status := http.StatusOK
	t.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthLogoutAll,
		SubjectID:    &subjectID,
		ResourceType: "auth",
		StatusCode:   &status,
		Metadata:     map[string]any{"revoked_sessions": count},
	})
	return count, nil
}

// PurgeExpired deletes refresh tokens that expired before the given time.
// Background jobs call it without a request deadline, so no store timeout is applied.
func (t *tokenUseCase) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	count, err := t.refreshRepo.DeleteExpired(ctx, before.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge expired refresh tokens")
	}
	return count, nil
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	txManager database.TxManager,
	userRepo UserRepository,
	refreshRepo RefreshTokenRepository,
	accessTokens authService.AccessTokenService,
	tokenService authService.TokenService,
	passwordService authService.PasswordService,
	auditLogUseCase AuditLogUseCase,
) TokenUseCase {
	return &tokenUseCase{
		config:          config,
		txManager:       txManager,
		userRepo:        userRepo,
		refreshRepo:     refreshRepo,
		accessTokens:    accessTokens,
		tokenService:    tokenService,
		passwordService: passwordService,
		auditLogUseCase: auditLogUseCase,
		now:             time.Now,
		decoyHash: sync.OnceValue(func() string {
			hash, err := passwordService.HashPassword(decoyPassword)
			if err != nil {
				return ""
			}
			return hash
		}),
	}
}
