package v1_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"

	v1 "github.com/keyline/keyline/internal/api/v1"
)

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	t.Run("all_ok_when_database_reachable", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHealthRoutes(api, &mockPinger{})

		for _, path := range []string{"/healthz", "/livez", "/readyz"} {
			resp := api.Get(path)
			assert.Equal(t, http.StatusOK, resp.Code, path)
		}
	})

	t.Run("database_down", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHealthRoutes(api, &mockPinger{err: errors.New("connection refused")})

		assert.Equal(t, http.StatusServiceUnavailable, api.Get("/healthz").Code)
		assert.Equal(t, http.StatusOK, api.Get("/livez").Code)
		assert.Equal(t, http.StatusServiceUnavailable, api.Get("/readyz").Code)
	})
}
