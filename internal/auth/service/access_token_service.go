package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	apperrors "github.com/allisson/warden/internal/errors"
)

// AccessTokenConfig configures JWT access tokens.
type AccessTokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	// Leeway tolerates clock skew on exp. Zero means none.
	Leeway time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// accessTokenClaims is the JWT payload of an access token.
type accessTokenClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtAccessTokenService struct {
	cfg    AccessTokenConfig
	now    func() time.Time
	parser *jwt.Parser
}

// NewAccessTokenService creates an HS256 AccessTokenService. It fails on a missing secret
// or a non-positive TTL so misconfiguration surfaces at startup.
func NewAccessTokenService(cfg AccessTokenConfig) (AccessTokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("access token secret is not configured")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("access token ttl must be greater than zero")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(now),
	)
	return &jwtAccessTokenService{cfg: cfg, now: now, parser: parser}, nil
}

func (s *jwtAccessTokenService) Issue(identity *authDomain.Identity) (*authDomain.IssuedAccessToken, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.TTL)

	claims := accessTokenClaims{
		Role:  string(identity.Role),
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   identity.SubjectID.String(),
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign access token")
	}

	return &authDomain.IssuedAccessToken{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *jwtAccessTokenService) Verify(token string) (*authDomain.AccessClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, authDomain.ErrTokenInvalid
	}

	var claims accessTokenClaims
	parsed, err := s.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, authDomain.ErrTokenInvalid
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrTokenInvalid
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrTokenInvalid
	}

	result := &authDomain.AccessClaims{
		SubjectID: subjectID,
		Role:      authDomain.Role(claims.Role),
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

func (s *jwtAccessTokenService) TTL() time.Duration {
	return s.cfg.TTL
}
