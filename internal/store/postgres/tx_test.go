package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/domain"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	serialization := &pgconn.PgError{Code: "40001"}
	deadlock := &pgconn.PgError{Code: "40P01"}

	t.Run("success first try", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := withRetry(ctx, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retryable error succeeds on second try", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := withRetry(ctx, func(context.Context) error {
			calls++
			if calls == 1 {
				return fmt.Errorf("claim: %w", serialization)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("second failure surfaces as transient", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := withRetry(ctx, func(context.Context) error {
			calls++
			return fmt.Errorf("claim: %w", deadlock)
		})
		assert.ErrorIs(t, err, domain.ErrTransient)
		assert.Equal(t, 2, calls)
	})

	t.Run("non-retryable error is not retried", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		calls := 0
		err := withRetry(ctx, func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("domain errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		err := withRetry(ctx, func(context.Context) error {
			return fmt.Errorf("claim: %w", domain.ErrSeatLimit)
		})
		assert.ErrorIs(t, err, domain.ErrSeatLimit)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
