package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyline/keyline/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	brands      *BrandRepo
	products    *ProductRepo
	keys        *LicenseKeyRepo
	licenses    *LicenseRepo
	activations *ActivationRepo
	audit       *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		brands:      NewBrandRepo(pool),
		products:    NewProductRepo(pool),
		keys:        NewLicenseKeyRepo(pool),
		licenses:    NewLicenseRepo(pool),
		activations: NewActivationRepo(pool),
		audit:       NewAuditRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}

func (s *Store) Brands() domain.BrandRepository           { return s.brands }
func (s *Store) Products() domain.ProductRepository       { return s.products }
func (s *Store) LicenseKeys() domain.LicenseKeyRepository { return s.keys }
func (s *Store) Licenses() domain.LicenseRepository       { return s.licenses }
func (s *Store) Activations() domain.ActivationRepository { return s.activations }
func (s *Store) Audit() domain.AuditRepository            { return s.audit }

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
