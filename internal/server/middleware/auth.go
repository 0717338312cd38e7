package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/keyline/keyline/internal/auth"
)

// BrandKeyHeader carries the brand credential on management routes.
const BrandKeyHeader = "X-Brand-Key"

// BrandAuth authenticates a brand from the X-Brand-Key header. Every
// failure mode produces the same 401 body so callers cannot distinguish
// an unknown slug from a wrong secret.
func BrandAuth(guard *auth.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(BrandKeyHeader)
			if key == "" {
				unauthorized(w)
				return
			}

			brand, err := guard.ResolveBrandKey(r.Context(), key)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyBrandID, brand.ID)
			ctx = context.WithValue(ctx, ContextKeyBrandSlug, brand.Slug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth authenticates back-office requests with a bearer JWT signed
// by the configured admin secret.
func AdminAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				unauthorized(w)
				return
			}

			claims, err := auth.ValidateAdminToken(jwtSecret, tok)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminActor, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP copies the request's remote address into the context so
// handlers behind the router can record it. Expects chi's RealIP
// middleware to have normalized r.RemoteAddr first.
func ClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyClientIP, r.RemoteAddr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return authz[7:]
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
}
