package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyline/keyline/internal/domain"
)

type ActivationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) *ActivationRepo {
	return &ActivationRepo{pool: pool}
}

const activationColumns = `id, license_id, instance_id, instance_name, active, activated_at, deactivated_at, ip_address, user_agent`

// ClaimSeat locks the license row, counts active seats while holding the
// lock, and only then inserts or reactivates. Two concurrent claims for
// the last seat serialize on the lock, so the count each one sees is
// exact. The partial unique index on (license_id, instance_id) backs
// this up at the constraint level.
func (r *ActivationRepo) ClaimSeat(ctx context.Context, licenseID uuid.UUID, instanceID, instanceName string, meta domain.ActivationMeta) (*domain.Activation, int, error) {
	var (
		act   domain.Activation
		count int
	)

	err := withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("activationRepo.ClaimSeat: begin: %w", err)
		}
		defer tx.Rollback(ctx) // nolint:errcheck

		var maxSeats *int
		err = tx.QueryRow(ctx,
			`SELECT max_seats FROM licenses WHERE id = $1 FOR UPDATE`,
			licenseID,
		).Scan(&maxSeats)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("activationRepo.ClaimSeat: %w", domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("activationRepo.ClaimSeat: lock license: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM activations WHERE license_id = $1 AND active`,
			licenseID,
		).Scan(&count); err != nil {
			return fmt.Errorf("activationRepo.ClaimSeat: count: %w", err)
		}

		// Already active: return the existing row untouched.
		err = tx.QueryRow(ctx,
			`SELECT `+activationColumns+`
			 FROM activations WHERE license_id = $1 AND instance_id = $2 AND active`,
			licenseID, instanceID,
		).Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
			&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent)
		if err == nil {
			return tx.Commit(ctx)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("activationRepo.ClaimSeat: existing: %w", err)
		}

		if maxSeats != nil && count >= *maxSeats {
			return fmt.Errorf("activationRepo.ClaimSeat: %w", domain.ErrSeatLimit)
		}

		now := time.Now().UTC()

		// Reactivate the most recent released row for this instance, or
		// insert a fresh one.
		err = tx.QueryRow(ctx,
			`UPDATE activations
			 SET active = TRUE, instance_name = $3, activated_at = $4, deactivated_at = NULL,
			     ip_address = $5, user_agent = $6
			 WHERE id = (
				SELECT id FROM activations
				WHERE license_id = $1 AND instance_id = $2 AND NOT active
				ORDER BY activated_at DESC LIMIT 1
			 )
			 RETURNING `+activationColumns,
			licenseID, instanceID, instanceName, now, meta.IPAddress, meta.UserAgent,
		).Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
			&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent)
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`INSERT INTO activations (id, license_id, instance_id, instance_name, active, activated_at, ip_address, user_agent)
				 VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7)
				 RETURNING `+activationColumns,
				uuid.New(), licenseID, instanceID, instanceName, now, meta.IPAddress, meta.UserAgent,
			).Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
				&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent)
		}
		if err != nil {
			return fmt.Errorf("activationRepo.ClaimSeat: claim: %w", err)
		}

		count++
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("activationRepo.ClaimSeat: commit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return &act, count, nil
}

// ReleaseSeat takes the same license lock as ClaimSeat so releases and
// claims serialize against each other. The row is kept, flagged inactive.
func (r *ActivationRepo) ReleaseSeat(ctx context.Context, licenseID uuid.UUID, instanceID string) (*domain.Activation, int, error) {
	var (
		act   domain.Activation
		count int
	)

	err := withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("activationRepo.ReleaseSeat: begin: %w", err)
		}
		defer tx.Rollback(ctx) // nolint:errcheck

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT TRUE FROM licenses WHERE id = $1 FOR UPDATE`,
			licenseID,
		).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("activationRepo.ReleaseSeat: %w", domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("activationRepo.ReleaseSeat: lock license: %w", err)
		}

		err = tx.QueryRow(ctx,
			`UPDATE activations SET active = FALSE, deactivated_at = $3
			 WHERE license_id = $1 AND instance_id = $2 AND active
			 RETURNING `+activationColumns,
			licenseID, instanceID, time.Now().UTC(),
		).Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
			&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("activationRepo.ReleaseSeat: %w", domain.ErrActivationNotFound)
		}
		if err != nil {
			return fmt.Errorf("activationRepo.ReleaseSeat: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM activations WHERE license_id = $1 AND active`,
			licenseID,
		).Scan(&count); err != nil {
			return fmt.Errorf("activationRepo.ReleaseSeat: count: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("activationRepo.ReleaseSeat: commit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return &act, count, nil
}

func (r *ActivationRepo) GetActive(ctx context.Context, licenseID uuid.UUID, instanceID string) (*domain.Activation, error) {
	var act domain.Activation

	err := r.pool.QueryRow(ctx,
		`SELECT `+activationColumns+`
		 FROM activations WHERE license_id = $1 AND instance_id = $2 AND active`,
		licenseID, instanceID,
	).Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
		&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("activationRepo.GetActive: %w", domain.ErrActivationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("activationRepo.GetActive: %w", err)
	}

	return &act, nil
}

func (r *ActivationRepo) CountActive(ctx context.Context, licenseID uuid.UUID) (int, error) {
	var count int

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM activations WHERE license_id = $1 AND active`,
		licenseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("activationRepo.CountActive: %w", err)
	}

	return count, nil
}

func (r *ActivationRepo) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*domain.Activation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activationColumns+`
		 FROM activations WHERE license_id = $1 ORDER BY activated_at`,
		licenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("activationRepo.ListByLicense: %w", err)
	}
	defer rows.Close()

	var acts []*domain.Activation
	for rows.Next() {
		var act domain.Activation
		if err := rows.Scan(&act.ID, &act.LicenseID, &act.InstanceID, &act.InstanceName, &act.Active,
			&act.ActivatedAt, &act.DeactivatedAt, &act.IPAddress, &act.UserAgent); err != nil {
			return nil, fmt.Errorf("activationRepo.ListByLicense: scan: %w", err)
		}
		acts = append(acts, &act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activationRepo.ListByLicense: %w", err)
	}

	return acts, nil
}
