package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyline/keyline/internal/domain"
)

type LicenseKeyRepo struct {
	pool *pgxpool.Pool
}

func NewLicenseKeyRepo(pool *pgxpool.Pool) *LicenseKeyRepo {
	return &LicenseKeyRepo{pool: pool}
}

// CreateWithLicenses inserts the key and every license in one
// transaction; a unique violation on any row rolls everything back.
func (r *LicenseKeyRepo) CreateWithLicenses(ctx context.Context, k *domain.LicenseKey, licenses []*domain.License) error {
	return withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: begin: %w", err)
		}
		defer tx.Rollback(ctx) // nolint:errcheck

		_, err = tx.Exec(ctx,
			`INSERT INTO license_keys (id, key, brand_id, customer_email, external_reference, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			k.ID, k.Key, k.BrandID, k.CustomerEmail, k.ExternalReference, k.CreatedAt, k.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: key exists: %w", domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: %w", err)
		}

		for _, lic := range licenses {
			_, err = tx.Exec(ctx,
				`INSERT INTO licenses (id, license_key_id, product_id, status, expires_at, max_seats, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				lic.ID, lic.LicenseKeyID, lic.ProductID, lic.Status, lic.ExpiresAt, lic.MaxSeats, lic.CreatedAt, lic.UpdatedAt,
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: %w", domain.ErrDuplicateLicense)
			}
			if err != nil {
				return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: license: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: commit: %w", err)
		}
		return nil
	})
}

func (r *LicenseKeyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LicenseKey, error) {
	return r.get(ctx, "licenseKeyRepo.GetByID", `WHERE id = $1`, id)
}

func (r *LicenseKeyRepo) GetByKey(ctx context.Context, key string) (*domain.LicenseKey, error) {
	return r.get(ctx, "licenseKeyRepo.GetByKey", `WHERE key = $1`, key)
}

func (r *LicenseKeyRepo) GetByBrandAndKey(ctx context.Context, brandID uuid.UUID, key string) (*domain.LicenseKey, error) {
	return r.get(ctx, "licenseKeyRepo.GetByBrandAndKey", `WHERE brand_id = $1 AND key = $2`, brandID, key)
}

func (r *LicenseKeyRepo) get(ctx context.Context, caller, where string, args ...any) (*domain.LicenseKey, error) {
	var k domain.LicenseKey

	err := r.pool.QueryRow(ctx,
		`SELECT id, key, brand_id, customer_email, external_reference, created_at, updated_at
		 FROM license_keys `+where,
		args...,
	).Scan(&k.ID, &k.Key, &k.BrandID, &k.CustomerEmail, &k.ExternalReference, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}

	return &k, nil
}

// ListByEmail filters by brand inside the query; rows belonging to other
// brands never leave the database.
func (r *LicenseKeyRepo) ListByEmail(ctx context.Context, brandID uuid.UUID, email string) ([]*domain.LicenseKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, key, brand_id, customer_email, external_reference, created_at, updated_at
		 FROM license_keys
		 WHERE brand_id = $1 AND LOWER(customer_email) = LOWER($2)
		 ORDER BY created_at`,
		brandID, email,
	)
	if err != nil {
		return nil, fmt.Errorf("licenseKeyRepo.ListByEmail: %w", err)
	}
	defer rows.Close()

	var keys []*domain.LicenseKey
	for rows.Next() {
		var k domain.LicenseKey
		if err := rows.Scan(&k.ID, &k.Key, &k.BrandID, &k.CustomerEmail, &k.ExternalReference, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("licenseKeyRepo.ListByEmail: scan: %w", err)
		}
		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("licenseKeyRepo.ListByEmail: %w", err)
	}

	return keys, nil
}
