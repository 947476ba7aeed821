package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	authWorker "github.com/allisson/warden/internal/auth/worker"
)

// RunCleanExpiredTokens deletes refresh tokens that expired more than days ago. Zero days
// deletes every expired token. It is the one-shot form of the purge worker.
func RunCleanExpiredTokens(
	ctx context.Context,
	purger authWorker.TokenPurger,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	before := time.Now().UTC().AddDate(0, 0, -days)
	logger.Info("cleaning expired refresh tokens", slog.Int("days", days), slog.Time("before", before))

	count, err := purger.PurgeExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to clean expired tokens: %w", err)
	}

	err = render(writer, format, map[string]any{"count": count, "days": days}, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Successfully deleted %d expired token(s) older than %d day(s)\n", count, days)
	})
	if err != nil {
		return err
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Int("days", days))
	return nil
}
