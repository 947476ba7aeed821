// Package repository implements persistence for refresh tokens and audit logs on
// PostgreSQL, MySQL and Redis.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

// PostgreSQLRefreshTokenRepository implements refresh token persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRefreshTokenRepository struct {
	db *sql.DB
}

// Create inserts a new refresh token.
func (p *PostgreSQLRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refresh_tokens
			  (id, token_hash, subject_id, expires_at, revoked_at, created_at, ip_address, user_agent)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.SubjectID,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
		token.ClientMetadata.IPAddress,
		token.ClientMetadata.UserAgent,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh token")
	}
	return nil
}

// GetActiveByTokenHash returns an unrevoked, unexpired token. Expiry is evaluated in the
// query so an expired row behaves exactly like a missing one.
func (p *PostgreSQLRefreshTokenRepository) GetActiveByTokenHash(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token_hash, subject_id, expires_at, revoked_at, created_at, ip_address, user_agent
			  FROM refresh_tokens
			  WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2`

	var token authDomain.RefreshToken
	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.TokenHash,
		&token.SubjectID,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
		&token.ClientMetadata.IPAddress,
		&token.ClientMetadata.UserAgent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRefreshTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refresh token")
	}

	return &token, nil
}

// Revoke sets revoked_at only while it is still NULL, so concurrent revocations are idempotent.
func (p *PostgreSQLRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET revoked_at = $1 WHERE token_hash = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, tokenHash)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke refresh token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected > 0, nil
}

// RevokeAllForSubject revokes every unrevoked token of the subject.
func (p *PostgreSQLRefreshTokenRepository) RevokeAllForSubject(
	ctx context.Context,
	subjectID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET revoked_at = $1 WHERE subject_id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, subjectID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke refresh tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected, nil
}

// DeleteExpired removes tokens whose expires_at is before the given time.
func (p *PostgreSQLRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired refresh tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected, nil
}

// NewPostgreSQLRefreshTokenRepository creates a new PostgreSQL refresh token repository.
func NewPostgreSQLRefreshTokenRepository(db *sql.DB) *PostgreSQLRefreshTokenRepository {
	return &PostgreSQLRefreshTokenRepository{db: db}
}
