package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; ok {
		return fmt.Errorf("productRepo.Create: %w", domain.ErrConflict)
	}
	for _, other := range r.s.products {
		if other.BrandID == p.BrandID && other.Slug == p.Slug {
			return fmt.Errorf("productRepo.Create: slug %s: %w", p.Slug, domain.ErrConflict)
		}
	}

	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("productRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetByBrandAndSlug(_ context.Context, brandID uuid.UUID, slug string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.BrandID == brandID && p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("productRepo.GetByBrandAndSlug: %w", domain.ErrNotFound)
}

func (r *ProductRepo) ListByBrand(_ context.Context, brandID uuid.UUID) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Product, 0)
	for _, p := range r.s.products {
		if p.BrandID == brandID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return fmt.Errorf("productRepo.Update: %w", domain.ErrNotFound)
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	r.s.products[p.ID] = &cp
	return nil
}
