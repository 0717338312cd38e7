package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type BrandRepo struct {
	s *Store
}

func (r *BrandRepo) Create(_ context.Context, b *domain.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.brands[b.ID]; ok {
		return fmt.Errorf("brandRepo.Create: %w", domain.ErrConflict)
	}
	for _, other := range r.s.brands {
		if other.Slug == b.Slug {
			return fmt.Errorf("brandRepo.Create: slug %s: %w", b.Slug, domain.ErrConflict)
		}
	}

	cp := *b
	r.s.brands[b.ID] = &cp
	return nil
}

func (r *BrandRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.brands[id]
	if !ok {
		return nil, fmt.Errorf("brandRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *BrandRepo) GetBySlug(_ context.Context, slug string) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.brands {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("brandRepo.GetBySlug: %w", domain.ErrNotFound)
}

func (r *BrandRepo) Update(_ context.Context, b *domain.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.brands[b.ID]; !ok {
		return fmt.Errorf("brandRepo.Update: %w", domain.ErrNotFound)
	}
	cp := *b
	cp.UpdatedAt = time.Now().UTC()
	r.s.brands[b.ID] = &cp
	return nil
}

func (r *BrandRepo) List(_ context.Context) ([]*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Brand, 0, len(r.s.brands))
	for _, b := range r.s.brands {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
