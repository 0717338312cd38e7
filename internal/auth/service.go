package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/keyline/keyline/internal/domain"
)

// ErrInvalidBrandKey is returned for every credential failure: bad format,
// unknown slug, hash mismatch, or inactive brand. The caller can never
// tell which part was wrong.
var ErrInvalidBrandKey = errors.New("auth: invalid brand API key")

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	secretRandLen = 24 // 24 bytes = 48 hex chars
)

// Guard resolves a presented brand credential of the form "slug:secret"
// to a Brand and enforces that the brand is active.
type Guard struct {
	brands domain.BrandRepository
}

// NewGuard creates a Guard backed by the brand repository.
func NewGuard(brands domain.BrandRepository) *Guard {
	return &Guard{brands: brands}
}

// ResolveBrandKey authenticates "slug:secret" and returns the brand.
func (g *Guard) ResolveBrandKey(ctx context.Context, presented string) (*domain.Brand, error) {
	slug, secret, ok := strings.Cut(presented, ":")
	if !ok || slug == "" || secret == "" {
		return nil, fmt.Errorf("auth.ResolveBrandKey: %w", ErrInvalidBrandKey)
	}

	brand, err := g.brands.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("auth.ResolveBrandKey: %w", ErrInvalidBrandKey)
	}

	if !VerifySecret(secret, brand.APIKeyHash) {
		return nil, fmt.Errorf("auth.ResolveBrandKey: %w", ErrInvalidBrandKey)
	}

	if !brand.Active {
		return nil, fmt.Errorf("auth.ResolveBrandKey: %w", ErrInvalidBrandKey)
	}

	return brand, nil
}

// GenerateBrandSecret creates a new random brand secret and its hash.
// The raw secret is shown to the operator once and never stored.
func GenerateBrandSecret() (raw, hash string, err error) {
	buf := make([]byte, secretRandLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("auth.GenerateBrandSecret: %w", err)
	}

	raw = hex.EncodeToString(buf)

	hash, err = HashSecret(raw)
	if err != nil {
		return "", "", err
	}

	return raw, hash, nil
}

// HashSecret hashes a brand secret with argon2id.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth.HashSecret: generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// VerifySecret checks a secret against an argon2id hash in constant time.
func VerifySecret(secret, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
