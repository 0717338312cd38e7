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

type BrandRepo struct {
	pool *pgxpool.Pool
}

func NewBrandRepo(pool *pgxpool.Pool) *BrandRepo {
	return &BrandRepo{pool: pool}
}

func (r *BrandRepo) Create(ctx context.Context, b *domain.Brand) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO brands (id, name, slug, api_key_hash, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.Name, b.Slug, b.APIKeyHash, b.Active, b.CreatedAt, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("brandRepo.Create: slug %s: %w", b.Slug, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("brandRepo.Create: %w", err)
	}

	return nil
}

func (r *BrandRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	var b domain.Brand

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, api_key_hash, active, created_at, updated_at
		 FROM brands WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.Slug, &b.APIKeyHash, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("brandRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("brandRepo.GetByID: %w", err)
	}

	return &b, nil
}

func (r *BrandRepo) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	var b domain.Brand

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, api_key_hash, active, created_at, updated_at
		 FROM brands WHERE slug = $1`,
		slug,
	).Scan(&b.ID, &b.Name, &b.Slug, &b.APIKeyHash, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("brandRepo.GetBySlug: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("brandRepo.GetBySlug: %w", err)
	}

	return &b, nil
}

func (r *BrandRepo) Update(ctx context.Context, b *domain.Brand) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE brands SET name = $2, slug = $3, api_key_hash = $4, active = $5, updated_at = now()
		 WHERE id = $1`,
		b.ID, b.Name, b.Slug, b.APIKeyHash, b.Active,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("brandRepo.Update: slug %s: %w", b.Slug, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("brandRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("brandRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BrandRepo) List(ctx context.Context) ([]*domain.Brand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, api_key_hash, active, created_at, updated_at
		 FROM brands ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("brandRepo.List: %w", err)
	}
	defer rows.Close()

	var brands []*domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.APIKeyHash, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("brandRepo.List: scan: %w", err)
		}
		brands = append(brands, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("brandRepo.List: %w", err)
	}

	return brands, nil
}
