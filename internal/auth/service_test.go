package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/auth"
	"github.com/keyline/keyline/internal/domain"
)

// mockBrandRepo is a configurable mock implementing domain.BrandRepository.
type mockBrandRepo struct {
	bySlug    *domain.Brand
	bySlugErr error
}

func (m *mockBrandRepo) Create(context.Context, *domain.Brand) error { return nil }
func (m *mockBrandRepo) GetByID(context.Context, uuid.UUID) (*domain.Brand, error) {
	return nil, domain.ErrNotFound
}
func (m *mockBrandRepo) GetBySlug(context.Context, string) (*domain.Brand, error) {
	return m.bySlug, m.bySlugErr
}
func (m *mockBrandRepo) Update(context.Context, *domain.Brand) error { return nil }
func (m *mockBrandRepo) List(context.Context) ([]*domain.Brand, error) {
	return nil, nil
}

func activeBrand(t *testing.T, secret string) *domain.Brand {
	t.Helper()

	hash, err := auth.HashSecret(secret)
	require.NoError(t, err)

	return &domain.Brand{
		ID:         uuid.New(),
		Name:       "Acme",
		Slug:       "acme",
		APIKeyHash: hash,
		Active:     true,
	}
}

func TestGuard_ResolveBrandKey(t *testing.T) {
	t.Parallel()

	const secret = "4f9d1c2b8a7e6f5d4c3b2a1908f7e6d5c4b3a29181716151"

	t.Run("valid_key", func(t *testing.T) {
		t.Parallel()

		brand := activeBrand(t, secret)
		guard := auth.NewGuard(&mockBrandRepo{bySlug: brand})

		got, err := guard.ResolveBrandKey(context.Background(), "acme:"+secret)
		require.NoError(t, err)
		assert.Equal(t, brand.ID, got.ID)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		t.Parallel()

		brand := activeBrand(t, secret)
		guard := auth.NewGuard(&mockBrandRepo{bySlug: brand})

		_, err := guard.ResolveBrandKey(context.Background(), "acme:not-the-secret")
		assert.ErrorIs(t, err, auth.ErrInvalidBrandKey)
	})

	t.Run("unknown_slug", func(t *testing.T) {
		t.Parallel()

		guard := auth.NewGuard(&mockBrandRepo{bySlugErr: domain.ErrNotFound})

		_, err := guard.ResolveBrandKey(context.Background(), "ghost:"+secret)
		assert.ErrorIs(t, err, auth.ErrInvalidBrandKey)
	})

	t.Run("inactive_brand", func(t *testing.T) {
		t.Parallel()

		brand := activeBrand(t, secret)
		brand.Active = false
		guard := auth.NewGuard(&mockBrandRepo{bySlug: brand})

		_, err := guard.ResolveBrandKey(context.Background(), "acme:"+secret)
		assert.ErrorIs(t, err, auth.ErrInvalidBrandKey)
	})

	t.Run("malformed_credential", func(t *testing.T) {
		t.Parallel()

		guard := auth.NewGuard(&mockBrandRepo{})

		for _, presented := range []string{"", "acme", ":secret", "acme:"} {
			_, err := guard.ResolveBrandKey(context.Background(), presented)
			assert.ErrorIs(t, err, auth.ErrInvalidBrandKey, "presented=%q", presented)
		}
	})

	// Unknown slug and wrong secret must be indistinguishable to the caller.
	t.Run("uniform_failure", func(t *testing.T) {
		t.Parallel()

		brand := activeBrand(t, secret)

		_, errWrongSecret := auth.NewGuard(&mockBrandRepo{bySlug: brand}).
			ResolveBrandKey(context.Background(), "acme:wrong")
		_, errUnknownSlug := auth.NewGuard(&mockBrandRepo{bySlugErr: domain.ErrNotFound}).
			ResolveBrandKey(context.Background(), "acme:wrong")

		assert.Equal(t, errWrongSecret.Error(), errUnknownSlug.Error())
	})
}

func TestGenerateBrandSecret(t *testing.T) {
	t.Parallel()

	raw, hash, err := auth.GenerateBrandSecret()
	require.NoError(t, err)
	assert.Len(t, raw, 48)
	assert.NotContains(t, hash, raw)
	assert.True(t, auth.VerifySecret(raw, hash))

	raw2, _, err := auth.GenerateBrandSecret()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, auth.VerifySecret("secret", ""))
	assert.False(t, auth.VerifySecret("secret", "no-separator"))
	assert.False(t, auth.VerifySecret("secret", "nothex$deadbeef"))
	assert.False(t, auth.VerifySecret("secret", "deadbeef$nothex"))
}

func TestAdminToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"

	token, err := auth.IssueAdminToken(secret, "ops@keyline", 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateAdminToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "ops@keyline", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "keyline", claims.Issuer)
}

func TestAdminToken_ExpiredRejected(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key"

	token, err := auth.IssueAdminToken(secret, "ops", -time.Second)
	require.NoError(t, err)

	claims, err := auth.ValidateAdminToken(secret, token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAdminToken_WrongSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAdminToken("secret-one-abcdefghijklmnopqrstu", "ops", time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateAdminToken("secret-two-abcdefghijklmnopqrstu", token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
