package redis_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	redisstore "github.com/keyline/keyline/internal/store/redis"
)

func TestActivationChannel(t *testing.T) {
	t.Parallel()

	brandID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivationChannel(brandID)
		assert.Equal(t, "activations:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("nil UUID", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivationChannel(uuid.Nil)
		assert.Equal(t, "activations:00000000-0000-0000-0000-000000000000", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.ActivationChannel(brandID)
		assert.True(t, strings.HasPrefix(got, "activations:"), "expected prefix 'activations:', got %q", got)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := redisstore.ActivationChannel(brandID)
		b := redisstore.ActivationChannel(brandID)
		assert.Equal(t, a, b)
	})

	t.Run("different brands produce different channels", func(t *testing.T) {
		t.Parallel()

		other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
		a := redisstore.ActivationChannel(brandID)
		b := redisstore.ActivationChannel(other)
		assert.NotEqual(t, a, b)
	})
}
