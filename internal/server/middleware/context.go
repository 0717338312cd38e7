package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeyBrandID    contextKey = "brand_id"
	ContextKeyBrandSlug  contextKey = "brand_slug"
	ContextKeyAdminActor contextKey = "admin_actor"
	ContextKeyClientIP   contextKey = "client_ip"
)

func BrandIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyBrandID).(uuid.UUID)
	return v, ok
}

func BrandSlugFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyBrandSlug).(string)
	return v, ok
}

func AdminActorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyAdminActor).(string)
	return v, ok
}

func ClientIPFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyClientIP).(string)
	return v, ok
}
