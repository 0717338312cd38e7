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

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, brand_id, name, slug, description, default_max_seats, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.BrandID, p.Name, p.Slug, p.Description, p.DefaultMaxSeats, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("productRepo.Create: slug %s: %w", p.Slug, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}

	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx,
		`SELECT id, brand_id, name, slug, description, default_max_seats, active, created_at, updated_at
		 FROM products WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.BrandID, &p.Name, &p.Slug, &p.Description, &p.DefaultMaxSeats, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("productRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProductRepo) GetByBrandAndSlug(ctx context.Context, brandID uuid.UUID, slug string) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx,
		`SELECT id, brand_id, name, slug, description, default_max_seats, active, created_at, updated_at
		 FROM products WHERE brand_id = $1 AND slug = $2`,
		brandID, slug,
	).Scan(&p.ID, &p.BrandID, &p.Name, &p.Slug, &p.Description, &p.DefaultMaxSeats, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("productRepo.GetByBrandAndSlug: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("productRepo.GetByBrandAndSlug: %w", err)
	}

	return &p, nil
}

func (r *ProductRepo) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, brand_id, name, slug, description, default_max_seats, active, created_at, updated_at
		 FROM products WHERE brand_id = $1 ORDER BY created_at`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("productRepo.ListByBrand: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.BrandID, &p.Name, &p.Slug, &p.Description, &p.DefaultMaxSeats, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("productRepo.ListByBrand: scan: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("productRepo.ListByBrand: %w", err)
	}

	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, slug = $3, description = $4, default_max_seats = $5, active = $6, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.DefaultMaxSeats, p.Active,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("productRepo.Update: slug %s: %w", p.Slug, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("productRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}
