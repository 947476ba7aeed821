package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

const resourceAuthentication = "authentication"

// guardUseCase implements GuardUseCase.
type guardUseCase struct {
	accessTokens    authService.AccessTokenService
	userRepo        UserRepository
	registry        authService.CapabilityRegistry
	scoper          authService.OwnershipScoper
	auditLogUseCase AuditLogUseCase
	logger          *slog.Logger
	storeTimeout    time.Duration
}

// Authenticate verifies the bearer token and re-resolves the live user, so role changes and
// deactivation take effect on the next request. Denials are logged and audited.
func (g *guardUseCase) Authenticate(ctx context.Context, bearerToken string) (*authDomain.Identity, error) {
	identity, subjectID, err := g.authenticate(ctx, bearerToken)
	if err != nil {
		if code := apperrors.Code(err); code != "" && !apperrors.Is(err, apperrors.ErrServiceUnavailable) {
			g.denyAuthentication(ctx, subjectID, code)
		}
		return nil, err
	}
	return identity, nil
}

// AuthenticateOptional resolves the caller if possible. Authentication denials become an
// anonymous result; service failures are still returned as errors.
func (g *guardUseCase) AuthenticateOptional(ctx context.Context, bearerToken string) (authDomain.AuthResult, error) {
	if bearerToken == "" {
		return authDomain.Anonymous(""), nil
	}

	identity, _, err := g.authenticate(ctx, bearerToken)
	if err != nil {
		if code := apperrors.Code(err); code != "" && !apperrors.Is(err, apperrors.ErrServiceUnavailable) {
			g.logger.Debug("optional authentication fell back to anonymous", slog.String("reason", code))
			return authDomain.Anonymous(code), nil
		}
		return authDomain.AuthResult{}, err
	}
	return authDomain.Authenticated(identity), nil
}

// authenticate returns the subject id claimed by the token, when one was recovered,
// alongside denials.
func (g *guardUseCase) authenticate(
	ctx context.Context,
	bearerToken string,
) (*authDomain.Identity, *uuid.UUID, error) {
	if bearerToken == "" {
		return nil, nil, authDomain.ErrNoToken
	}

	claims, err := g.accessTokens.Verify(bearerToken)
	if err != nil {
		return nil, nil, authDomain.ErrTokenInvalid
	}

	user, err := database.WithStore(ctx, g.storeTimeout, func(ctx context.Context) (*authDomain.User, error) {
		return g.userRepo.Get(ctx, claims.SubjectID)
	})
	if err != nil {
		if apperrors.IsDecided(err, authDomain.ErrUserNotFound) {
			return nil, &claims.SubjectID, authDomain.ErrInactiveUser
		}
		g.logger.Error("failed to resolve token subject",
			slog.String("subject_id", claims.SubjectID.String()),
			slog.Any("error", err),
		)
		return nil, &claims.SubjectID, err
	}

	if !user.IsActive {
		return nil, &user.ID, authDomain.ErrInactiveUser
	}

	return authDomain.IdentityFromUser(user), nil, nil
}

func (g *guardUseCase) denyAuthentication(ctx context.Context, subjectID *uuid.UUID, reason string) {
	info, _ := authDomain.RequestInfoFrom(ctx)
	g.logger.Warn("authentication denied",
		slog.String("reason", reason),
		slog.String("correlation_id", info.CorrelationID),
		slog.String("path", info.Path),
	)

	status := http.StatusUnauthorized
	g.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthenticationDenied,
		SubjectID:    subjectID,
		ResourceType: resourceAuthentication,
		StatusCode:   &status,
		Metadata:     map[string]any{"reason": reason},
	})
}

// Authorize admits identity when its role holds capability. A denial is audited with the
// required capability and the caller's role.
func (g *guardUseCase) Authorize(
	ctx context.Context,
	identity *authDomain.Identity,
	capability authDomain.Capability,
) error {
	if identity == nil {
		return authDomain.ErrNoToken
	}

	if g.registry.HasCapability(identity.Role, capability) {
		return nil
	}

	status := http.StatusForbidden
	g.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthorizationDenied,
		SubjectID:    &identity.SubjectID,
		ResourceType: capability.Resource(),
		StatusCode:   &status,
		Metadata: map[string]any{
			"reason":   authDomain.CodeForbidden,
			"required": string(capability),
			"userRole": string(identity.Role),
		},
	})

	return authDomain.NewCapabilityDeniedError(capability)
}

// AuthorizeOwnership loads the resource first, so a missing resource is reported as not found
// before any ownership decision, then admits the owner (or an admin).
func (g *guardUseCase) AuthorizeOwnership(
	ctx context.Context,
	identity *authDomain.Identity,
	resourceType string,
	resourceID string,
	load func(ctx context.Context) (authDomain.Owned, error),
) (authDomain.Owned, error) {
	if identity == nil {
		return nil, authDomain.ErrNoToken
	}

	resource, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if g.scoper.IsOwner(identity, resource.Owner()) {
		return resource, nil
	}

	metadata := map[string]any{
		"reason":       authDomain.CodeForbiddenOwnership,
		"resourceType": resourceType,
		"userRole":     string(identity.Role),
	}
	if ownerID, ok := authDomain.ReferenceID(resource.Owner()); ok {
		metadata["ownerId"] = ownerID.String()
	}

	status := http.StatusForbidden
	g.auditLogUseCase.Record(ctx, &authDomain.AuditEvent{
		Action:       authDomain.ActionAuthorizationDenied,
		SubjectID:    &identity.SubjectID,
		ResourceType: authDomain.ResourceOwnership,
		ResourceID:   &resourceID,
		StatusCode:   &status,
		Metadata:     metadata,
	})

	return nil, authDomain.ErrForbiddenOwnership
}

// NewGuardUseCase creates a new GuardUseCase with the provided dependencies.
func NewGuardUseCase(
	accessTokens authService.AccessTokenService,
	userRepo UserRepository,
	registry authService.CapabilityRegistry,
	scoper authService.OwnershipScoper,
	auditLogUseCase AuditLogUseCase,
	logger *slog.Logger,
	storeTimeout time.Duration,
) GuardUseCase {
	return &guardUseCase{
		accessTokens:    accessTokens,
		userRepo:        userRepo,
		registry:        registry,
		scoper:          scoper,
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
		storeTimeout:    storeTimeout,
	}
}
