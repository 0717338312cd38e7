package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/keyline/keyline/internal/domain"
)

const retryBackoff = 100 * time.Millisecond

// isRetryable reports whether err is a serialization failure or deadlock
// (SQLSTATE 40001 / 40P01), both of which are safe to retry once the
// competing transaction has finished.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// withRetry runs fn and retries it exactly once after a short backoff if
// it failed with a retryable error. A second failure is surfaced as
// ErrTransient so callers can tell the client to try again.
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !isRetryable(err) {
		return err
	}

	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := fn(ctx); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %s", domain.ErrTransient, err)
		}
		return err
	}
	return nil
}
