package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	apperrors "github.com/allisson/warden/internal/errors"
)

const (
	refreshTokenKeyPrefix        = "refresh_token:"
	refreshTokenSubjectKeyPrefix = "refresh_tokens:subject:"
)

// revokeScript sets revoked_at only when the token exists and is not revoked yet,
// so concurrent revocations of the same token report success exactly once.
var revokeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 and redis.call('HEXISTS', KEYS[1], 'revoked_at') == 0 then
	redis.call('HSET', KEYS[1], 'revoked_at', ARGV[1])
	return 1
end
return 0
`)

// indexScript adds a token hash to the subject set and extends the set's TTL to ARGV[2]
// milliseconds. The TTL never shrinks, so the set outlives its longest-lived token.
var indexScript = redis.NewScript(`
redis.call('SADD', KEYS[1], ARGV[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl >= tonumber(ARGV[2]) then
	return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// RedisRefreshTokenRepository keeps refresh tokens in Redis hashes that expire with the token.
// A per-subject set indexes token hashes for revoke-all.
type RedisRefreshTokenRepository struct {
	client *redis.Client
}

func refreshTokenKey(tokenHash string) string {
	return refreshTokenKeyPrefix + tokenHash
}

func refreshTokenSubjectKey(subjectID uuid.UUID) string {
	return refreshTokenSubjectKeyPrefix + subjectID.String()
}

func formatMicros(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

func parseMicros(value string) (time.Time, error) {
	micros, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(micros).UTC(), nil
}

// Create stores the token and indexes it under its subject.
func (r *RedisRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	key := refreshTokenKey(token.TokenHash)
	subjectKey := refreshTokenSubjectKey(token.SubjectID)

	fields := map[string]any{
		"id":         token.ID.String(),
		"subject_id": token.SubjectID.String(),
		"expires_at": formatMicros(token.ExpiresAt),
		"created_at": formatMicros(token.CreatedAt),
		"ip_address": token.ClientMetadata.IPAddress,
		"user_agent": token.ClientMetadata.UserAgent,
	}
	if token.RevokedAt != nil {
		fields["revoked_at"] = formatMicros(*token.RevokedAt)
	}

	indexTTL := max(time.Until(token.ExpiresAt).Milliseconds(), 1)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.PExpireAt(ctx, key, token.ExpiresAt)
		indexScript.Eval(ctx, pipe, []string{subjectKey}, token.TokenHash, indexTTL)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh token")
	}
	return nil
}

// GetActiveByTokenHash returns an unrevoked, unexpired token.
func (r *RedisRefreshTokenRepository) GetActiveByTokenHash(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.RefreshToken, error) {
	values, err := r.client.HGetAll(ctx, refreshTokenKey(tokenHash)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get refresh token")
	}
	if len(values) == 0 {
		return nil, authDomain.ErrRefreshTokenNotFound
	}

	token, err := decodeRefreshToken(tokenHash, values)
	if err != nil {
		return nil, err
	}
	if !token.IsUsable(now) {
		return nil, authDomain.ErrRefreshTokenNotFound
	}
	return token, nil
}

func decodeRefreshToken(tokenHash string, values map[string]string) (*authDomain.RefreshToken, error) {
	token := &authDomain.RefreshToken{
		TokenHash: tokenHash,
		ClientMetadata: authDomain.ClientMetadata{
			IPAddress: values["ip_address"],
			UserAgent: values["user_agent"],
		},
	}

	var err error
	if token.ID, err = uuid.Parse(values["id"]); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse refresh token id")
	}
	if token.SubjectID, err = uuid.Parse(values["subject_id"]); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse refresh token subject_id")
	}
	if token.ExpiresAt, err = parseMicros(values["expires_at"]); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse refresh token expires_at")
	}
	if token.CreatedAt, err = parseMicros(values["created_at"]); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse refresh token created_at")
	}
	if revoked, ok := values["revoked_at"]; ok {
		revokedAt, err := parseMicros(revoked)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse refresh token revoked_at")
		}
		token.RevokedAt = &revokedAt
	}
	return token, nil
}

// Revoke marks the token revoked. It reports false when the token is unknown,
// expired or already revoked.
func (r *RedisRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	revoked, err := revokeScript.Run(ctx, r.client, []string{refreshTokenKey(tokenHash)}, formatMicros(now)).Int()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke refresh token")
	}
	return revoked == 1, nil
}

// RevokeAllForSubject revokes every token indexed under the subject.
func (r *RedisRefreshTokenRepository) RevokeAllForSubject(
	ctx context.Context,
	subjectID uuid.UUID,
	now time.Time,
) (int64, error) {
	subjectKey := refreshTokenSubjectKey(subjectID)

	hashes, err := r.client.SMembers(ctx, subjectKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, apperrors.Wrap(err, "failed to list refresh tokens")
	}

	var count int64
	for _, hash := range hashes {
		revoked, err := r.Revoke(ctx, hash, now)
		if err != nil {
			return count, err
		}
		if revoked {
			count++
			continue
		}

		exists, err := r.client.Exists(ctx, refreshTokenKey(hash)).Result()
		if err != nil {
			return count, apperrors.Wrap(err, "failed to check refresh token")
		}
		if exists == 0 {
			if err := r.client.SRem(ctx, subjectKey, hash).Err(); err != nil {
				return count, apperrors.Wrap(err, "failed to prune refresh token index")
			}
		}
	}
	return count, nil
}

// DeleteExpired is a no-op: Redis expires token keys on its own.
func (r *RedisRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// NewRedisRefreshTokenRepository creates a new Redis refresh token repository.
func NewRedisRefreshTokenRepository(client *redis.Client) *RedisRefreshTokenRepository {
	return &RedisRefreshTokenRepository{client: client}
}
