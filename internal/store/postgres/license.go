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

type LicenseRepo struct {
	pool *pgxpool.Pool
}

func NewLicenseRepo(pool *pgxpool.Pool) *LicenseRepo {
	return &LicenseRepo{pool: pool}
}

func (r *LicenseRepo) Create(ctx context.Context, l *domain.License) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO licenses (id, license_key_id, product_id, status, expires_at, max_seats, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.LicenseKeyID, l.ProductID, l.Status, l.ExpiresAt, l.MaxSeats, l.CreatedAt, l.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("licenseRepo.Create: %w", domain.ErrDuplicateLicense)
	}
	if err != nil {
		return fmt.Errorf("licenseRepo.Create: %w", err)
	}

	return nil
}

func (r *LicenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.License, error) {
	var l domain.License

	err := r.pool.QueryRow(ctx,
		`SELECT id, license_key_id, product_id, status, expires_at, max_seats, created_at, updated_at
		 FROM licenses WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.LicenseKeyID, &l.ProductID, &l.Status, &l.ExpiresAt, &l.MaxSeats, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("licenseRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("licenseRepo.GetByID: %w", err)
	}

	return &l, nil
}

func (r *LicenseRepo) GetByKeyAndProduct(ctx context.Context, licenseKeyID, productID uuid.UUID) (*domain.License, error) {
	var l domain.License

	err := r.pool.QueryRow(ctx,
		`SELECT id, license_key_id, product_id, status, expires_at, max_seats, created_at, updated_at
		 FROM licenses WHERE license_key_id = $1 AND product_id = $2`,
		licenseKeyID, productID,
	).Scan(&l.ID, &l.LicenseKeyID, &l.ProductID, &l.Status, &l.ExpiresAt, &l.MaxSeats, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("licenseRepo.GetByKeyAndProduct: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("licenseRepo.GetByKeyAndProduct: %w", err)
	}

	return &l, nil
}

func (r *LicenseRepo) ListByLicenseKey(ctx context.Context, licenseKeyID uuid.UUID) ([]*domain.License, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, license_key_id, product_id, status, expires_at, max_seats, created_at, updated_at
		 FROM licenses WHERE license_key_id = $1 ORDER BY created_at`,
		licenseKeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("licenseRepo.ListByLicenseKey: %w", err)
	}
	defer rows.Close()

	var licenses []*domain.License
	for rows.Next() {
		var l domain.License
		if err := rows.Scan(&l.ID, &l.LicenseKeyID, &l.ProductID, &l.Status, &l.ExpiresAt, &l.MaxSeats, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("licenseRepo.ListByLicenseKey: scan: %w", err)
		}
		licenses = append(licenses, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("licenseRepo.ListByLicenseKey: %w", err)
	}

	return licenses, nil
}

func (r *LicenseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LicenseStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE licenses SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("licenseRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("licenseRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}
