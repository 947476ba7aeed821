package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	apperrors "github.com/allisson/warden/internal/errors"
	"github.com/allisson/warden/internal/metrics"
)

func metricsStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// decisionStatus labels guard outcomes: admitted, denied, or error when no decision was made.
func decisionStatus(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrForbidden):
		return "denied"
	default:
		return "error"
	}
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	t.metrics.Observe(ctx, "auth", operation, metricsStatus(err), time.Since(start))
}

// Login records metrics for login operations.
func (t *tokenUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := t.next.Login(ctx, input)
	t.record(ctx, "login", start, err)
	return session, err
}

// IssueAccessToken records metrics for access token issuance.
func (t *tokenUseCaseWithMetrics) IssueAccessToken(
	identity *authDomain.Identity,
) (*authDomain.IssuedAccessToken, error) {
	start := time.Now()
	token, err := t.next.IssueAccessToken(identity)
	t.record(context.Background(), "access_token_issue", start, err)
	return token, err
}

// VerifyAccessToken records metrics for access token verification.
func (t *tokenUseCaseWithMetrics) VerifyAccessToken(token string) (*authDomain.AccessClaims, error) {
	start := time.Now()
	claims, err := t.next.VerifyAccessToken(token)
	t.record(context.Background(), "access_token_verify", start, err)
	return claims, err
}

// IssueRefreshToken records metrics for refresh token issuance.
func (t *tokenUseCaseWithMetrics) IssueRefreshToken(
	ctx context.Context,
	identity *authDomain.Identity,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.IssuedRefreshToken, error) {
	start := time.Now()
	token, err := t.next.IssueRefreshToken(ctx, identity, clientMetadata)
	t.record(ctx, "refresh_token_issue", start, err)
	return token, err
}

// VerifyRefreshToken records metrics for refresh token verification.
func (t *tokenUseCaseWithMetrics) VerifyRefreshToken(
	ctx context.Context,
	plainToken string,
) (*authDomain.RefreshToken, error) {
	start := time.Now()
	token, err := t.next.VerifyRefreshToken(ctx, plainToken)
	t.record(ctx, "refresh_token_verify", start, err)
	return token, err
}

// Refresh records metrics for refresh operations.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	plainToken string,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := t.next.Refresh(ctx, plainToken, clientMetadata)
	t.record(ctx, "refresh", start, err)
	return session, err
}

// RevokeRefreshToken records metrics for logout operations.
func (t *tokenUseCaseWithMetrics) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	start := time.Now()
	err := t.next.RevokeRefreshToken(ctx, plainToken)
	t.record(ctx, "logout", start, err)
	return err
}

// RevokeAllForSubject records metrics for logout-all operations.
func (t *tokenUseCaseWithMetrics) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	start := time.Now()
	count, err := t.next.RevokeAllForSubject(ctx, subjectID)
	t.record(ctx, "logout_all", start, err)
	return count, err
}

// PurgeExpired records metrics for expired token purges.
func (t *tokenUseCaseWithMetrics) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	count, err := t.next.PurgeExpired(ctx, before)
	t.record(ctx, "refresh_token_purge", start, err)
	return count, err
}

// guardUseCaseWithMetrics counts guard decisions.
type guardUseCaseWithMetrics struct {
	next    GuardUseCase
	metrics metrics.BusinessMetrics
}

// NewGuardUseCaseWithMetrics wraps a GuardUseCase with decision metrics.
func NewGuardUseCaseWithMetrics(useCase GuardUseCase, m metrics.BusinessMetrics) GuardUseCase {
	return &guardUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (g *guardUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	g.metrics.Observe(ctx, "guard", operation, decisionStatus(err), time.Since(start))
}

// Authenticate records authentication decisions.
func (g *guardUseCaseWithMetrics) Authenticate(ctx context.Context, bearerToken string) (*authDomain.Identity, error) {
	start := time.Now()
	identity, err := g.next.Authenticate(ctx, bearerToken)
	g.record(ctx, "authenticate", start, err)
	return identity, err
}

// AuthenticateOptional records optional authentication outcomes; anonymous results count as admitted.
func (g *guardUseCaseWithMetrics) AuthenticateOptional(
	ctx context.Context,
	bearerToken string,
) (authDomain.AuthResult, error) {
	start := time.Now()
	result, err := g.next.AuthenticateOptional(ctx, bearerToken)
	g.record(ctx, "authenticate_optional", start, err)
	return result, err
}

// Authorize records capability decisions.
func (g *guardUseCaseWithMetrics) Authorize(
	ctx context.Context,
	identity *authDomain.Identity,
	capability authDomain.Capability,
) error {
	start := time.Now()
	err := g.next.Authorize(ctx, identity, capability)
	g.record(ctx, "authorize", start, err)
	return err
}

// AuthorizeOwnership records ownership decisions. Loader failures such as not found count as errors.
func (g *guardUseCaseWithMetrics) AuthorizeOwnership(
	ctx context.Context,
	identity *authDomain.Identity,
	resourceType string,
	resourceID string,
	load func(ctx context.Context) (authDomain.Owned, error),
) (authDomain.Owned, error) {
	start := time.Now()
	resource, err := g.next.AuthorizeOwnership(ctx, identity, resourceType, resourceID, load)
	g.record(ctx, "authorize_ownership", start, err)
	return resource, err
}
