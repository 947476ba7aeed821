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

// MySQLRefreshTokenRepository implements refresh token persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLRefreshTokenRepository struct {
	db *sql.DB
}

// Create inserts a new refresh token.
func (m *MySQLRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal refresh token id")
	}
	subjectID, err := token.SubjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal refresh token subject_id")
	}

	query := `INSERT INTO refresh_tokens
			  (id, token_hash, subject_id, expires_at, revoked_at, created_at, ip_address, user_agent)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		subjectID,
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

// GetActiveByTokenHash returns an unrevoked, unexpired token.
func (m *MySQLRefreshTokenRepository) GetActiveByTokenHash(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, subject_id, expires_at, revoked_at, created_at, ip_address, user_agent
			  FROM refresh_tokens
			  WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`

	var token authDomain.RefreshToken
	var id, subjectID []byte
	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&id,
		&token.TokenHash,
		&subjectID,
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

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal refresh token id")
	}
	if err := token.SubjectID.UnmarshalBinary(subjectID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal refresh token subject_id")
	}

	return &token, nil
}

// Revoke sets revoked_at only while it is still NULL.
func (m *MySQLRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`

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
func (m *MySQLRefreshTokenRepository) RevokeAllForSubject(
	ctx context.Context,
	subjectID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := subjectID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal subject id")
	}

	query := `UPDATE refresh_tokens SET revoked_at = ? WHERE subject_id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, id)
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
func (m *MySQLRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired refresh tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected, nil
}

// NewMySQLRefreshTokenRepository creates a new MySQL refresh token repository.
func NewMySQLRefreshTokenRepository(db *sql.DB) *MySQLRefreshTokenRepository {
	return &MySQLRefreshTokenRepository{db: db}
}
