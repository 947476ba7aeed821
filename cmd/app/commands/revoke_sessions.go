package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// SessionRevoker ends every refresh token session of a user.
type SessionRevoker interface {
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error)
}

// RunRevokeSessions revokes every active refresh token of the user. Access tokens already
// issued stay valid until they expire.
func RunRevokeSessions(
	ctx context.Context,
	revoker SessionRevoker,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	subjectID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	count, err := revoker.RevokeAllForSubject(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	payload := map[string]any{"user_id": subjectID.String(), "revoked_sessions": count}
	err = render(writer, format, payload, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Revoked %d session(s) of user %s\n", count, subjectID)
	})
	if err != nil {
		return err
	}

	logger.Info("sessions revoked", slog.String("user_id", subjectID.String()), slog.Int64("count", count))
	return nil
}
