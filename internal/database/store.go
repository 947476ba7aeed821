package database

import (
	"context"
	"time"

	apperrors "github.com/allisson/warden/internal/errors"
)

// StoreContext bounds a store access by timeout. A non-positive timeout only adds cancellation.
func StoreContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// StoreErr reports err as ErrServiceUnavailable when the store context ran out, whatever
// the driver made of the cancellation. Other errors are returned unchanged.
func StoreErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !apperrors.Is(err, ctxErr) {
		err = apperrors.Join(err, ctxErr)
	}
	return apperrors.FromContext(err)
}

// WithStore runs fn under the store timeout.
func WithStore[T any](
	ctx context.Context,
	timeout time.Duration,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	storeCtx, cancel := StoreContext(ctx, timeout)
	defer cancel()

	result, err := fn(storeCtx)
	return result, StoreErr(storeCtx, err)
}
