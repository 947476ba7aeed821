package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/warden/internal/errors"
)

const (
	// RefreshTokenPrefix marks warden refresh tokens so secret scanners can spot leaked ones.
	RefreshTokenPrefix = "wrt_"

	refreshTokenEntropy = 32
)

type tokenService struct{}

// NewTokenService returns the TokenService for opaque refresh tokens. A token is the prefix
// followed by 256 random bits in unpadded base64url; only its SHA-256 is ever stored.
func NewTokenService() TokenService {
	return &tokenService{}
}

func (t *tokenService) GenerateToken() (plainToken string, tokenHash string, err error) {
	secret := make([]byte, refreshTokenEntropy)
	if _, err := rand.Read(secret); err != nil {
		return "", "", apperrors.Wrap(err, "failed to read random bytes for refresh token")
	}

	plainToken = RefreshTokenPrefix + base64.RawURLEncoding.EncodeToString(secret)
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken is the lookup key for a presented token: hex SHA-256 of the full string,
// prefix included.
func (t *tokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
