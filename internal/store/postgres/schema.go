package postgres

import (
	"context"
	"fmt"
)

// schema is the full idempotent DDL. The partial unique index on
// activations is the database-level backstop for the seat invariant: at
// most one active row per (license, instance).
const schema = `
CREATE TABLE IF NOT EXISTS brands (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	api_key_hash TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	brand_id UUID NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	default_max_seats INTEGER,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (brand_id, slug)
);

CREATE TABLE IF NOT EXISTS license_keys (
	id UUID PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	brand_id UUID NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	customer_email TEXT NOT NULL,
	external_reference TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS license_keys_brand_email_idx
	ON license_keys (brand_id, LOWER(customer_email));

CREATE TABLE IF NOT EXISTS licenses (
	id UUID PRIMARY KEY,
	license_key_id UUID NOT NULL REFERENCES license_keys(id) ON DELETE CASCADE,
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	status TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	max_seats INTEGER,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (license_key_id, product_id)
);

CREATE TABLE IF NOT EXISTS activations (
	id UUID PRIMARY KEY,
	license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
	instance_id TEXT NOT NULL,
	instance_name TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL,
	activated_at TIMESTAMPTZ NOT NULL,
	deactivated_at TIMESTAMPTZ,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS activations_active_instance_idx
	ON activations (license_id, instance_id) WHERE active;

CREATE INDEX IF NOT EXISTS activations_license_idx
	ON activations (license_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id UUID PRIMARY KEY,
	brand_id UUID NOT NULL,
	license_key_id UUID NOT NULL,
	license_id UUID,
	action TEXT NOT NULL,
	actor_type TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	details JSONB NOT NULL DEFAULT '{}',
	ip_address TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_log_key_idx
	ON audit_log (license_key_id, created_at DESC);
`

// Migrate applies the schema. Safe to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Store.Migrate: %w", err)
	}
	return nil
}
