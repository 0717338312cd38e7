package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/auth"
	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/server/middleware"
	"github.com/keyline/keyline/internal/store/memory"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// contextHandler captures context values set by middleware so tests can
// assert that the correct brand identity was injected.
type contextHandler struct {
	brandID   uuid.UUID
	brandSlug string
	called    bool
}

func (h *contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.brandID, _ = middleware.BrandIDFromContext(r.Context())
	h.brandSlug, _ = middleware.BrandSlugFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// seedBrand stores an active brand and returns it with its raw credential.
func seedBrand(t *testing.T, s *memory.Store, slug string) (*domain.Brand, string) {
	t.Helper()

	secret, hash, err := auth.GenerateBrandSecret()
	require.NoError(t, err)

	now := time.Now().UTC()
	b := &domain.Brand{
		ID:         uuid.New(),
		Name:       slug,
		Slug:       slug,
		APIKeyHash: hash,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Brands().Create(context.Background(), b))
	return b, slug + ":" + secret
}

// setBrand injects a brand ID into the request context.
func setBrand(r *http.Request, brandID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyBrandID, brandID)
	return r.WithContext(ctx)
}

// ===========================================================================
// 1. Context helpers
// ===========================================================================

func TestBrandIDFromContext(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		want := uuid.New()
		ctx := context.WithValue(context.Background(), middleware.ContextKeyBrandID, want)

		got, ok := middleware.BrandIDFromContext(ctx)

		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		got, ok := middleware.BrandIDFromContext(context.Background())

		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		ctx := context.WithValue(context.Background(), middleware.ContextKeyBrandID, "not-a-uuid")

		got, ok := middleware.BrandIDFromContext(ctx)

		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
	})
}

func TestClientIPFromContext(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		ctx := context.WithValue(context.Background(), middleware.ContextKeyClientIP, "203.0.113.9")

		got, ok := middleware.ClientIPFromContext(ctx)

		require.True(t, ok)
		assert.Equal(t, "203.0.113.9", got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		got, ok := middleware.ClientIPFromContext(context.Background())

		assert.False(t, ok)
		assert.Empty(t, got)
	})
}

// ===========================================================================
// 2. BrandAuth middleware
// ===========================================================================

func TestBrandAuth_ValidKey_PopulatesContext(t *testing.T) {
	t.Parallel()

	s := memory.New()
	brand, apiKey := seedBrand(t, s, "acme")
	guard := auth.NewGuard(s.Brands())

	capture := &contextHandler{}
	handler := middleware.BrandAuth(guard)(capture)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.BrandKeyHeader, apiKey)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.True(t, capture.called, "inner handler must be called")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, brand.ID, capture.brandID)
	assert.Equal(t, "acme", capture.brandSlug)
}

func TestBrandAuth_Failures(t *testing.T) {
	t.Parallel()

	s := memory.New()
	_, apiKey := seedBrand(t, s, "acme")
	guard := auth.NewGuard(s.Brands())

	tests := []struct {
		name string
		key  string
	}{
		{name: "missing header", key: ""},
		{name: "malformed key", key: "no-colon-here"},
		{name: "unknown slug", key: "ghost:" + apiKey[5:]},
		{name: "wrong secret", key: "acme:definitely-not-the-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.BrandAuth(guard)(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.key != "" {
				req.Header.Set(middleware.BrandKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "missing or invalid credentials")
		})
	}
}

func TestBrandAuth_InactiveBrand_Returns401(t *testing.T) {
	t.Parallel()

	s := memory.New()
	brand, apiKey := seedBrand(t, s, "acme")
	brand.Active = false
	require.NoError(t, s.Brands().Update(context.Background(), brand))

	guard := auth.NewGuard(s.Brands())
	handler := middleware.BrandAuth(guard)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.BrandKeyHeader, apiKey)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ===========================================================================
// 3. AdminAuth middleware
// ===========================================================================

const testJWTSecret = "test-jwt-secret-for-middleware-tests"

func TestAdminAuth_ValidToken_PopulatesContext(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAdminToken(testJWTSecret, "ops@example.com", 15*time.Minute)
	require.NoError(t, err)

	var gotActor string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = middleware.AdminActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.AdminAuth(testJWTSecret)(inner)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@example.com", gotActor)
}

func TestAdminAuth_Failures(t *testing.T) {
	t.Parallel()

	expired, err := auth.IssueAdminToken(testJWTSecret, "ops", -1*time.Second)
	require.NoError(t, err)
	wrongSecret, err := auth.IssueAdminToken("other-secret", "ops", 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "garbage token", authHeader: "Bearer totally.invalid.token"},
		{name: "expired token", authHeader: "Bearer " + expired},
		{name: "wrong secret", authHeader: "Bearer " + wrongSecret},
		{name: "basic scheme", authHeader: "Basic abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.AdminAuth(testJWTSecret)(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminAuth_LowercaseBearer(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAdminToken(testJWTSecret, "ops", 15*time.Minute)
	require.NoError(t, err)

	handler := middleware.AdminAuth(testJWTSecret)(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ===========================================================================
// 4. Rate limiting
// ===========================================================================

func TestRateLimitByIP_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(context.Background(), 0.001, 2)(okHandler)

	for i := range 2 {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = "198.51.100.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimitByIP_IndependentPerIP(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(context.Background(), 0.001, 1)(okHandler)

	reqA := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	reqA.RemoteAddr = "198.51.100.1:1234"
	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, reqA)
	require.Equal(t, http.StatusOK, recA.Code)

	reqA2 := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	reqA2.RemoteAddr = "198.51.100.1:1234"
	recA2 := httptest.NewRecorder()
	handler.ServeHTTP(recA2, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, recA2.Code)

	reqB := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	reqB.RemoteAddr = "198.51.100.2:1234"
	recB := httptest.NewRecorder()

	handler.ServeHTTP(recB, reqB)

	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimitByBrand_NoBrandInContext_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByBrand(context.Background(), 0.001, 1)(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitByBrand_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	brandID := uuid.New()
	handler := middleware.RateLimitByBrand(context.Background(), 0.001, 2)(okHandler)

	for i := range 2 {
		req := setBrand(httptest.NewRequest(http.MethodGet, "/", http.NoBody), brandID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := setBrand(httptest.NewRequest(http.MethodGet, "/", http.NoBody), brandID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// ===========================================================================
// 5. ClientIP middleware
// ===========================================================================

func TestClientIP_InjectsRemoteAddr(t *testing.T) {
	t.Parallel()

	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = middleware.ClientIPFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.ClientIP()(inner)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "203.0.113.9:4242"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.9:4242", got)
}
