package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyline/keyline/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, e *domain.AuditEvent) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: marshal details: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, brand_id, license_key_id, license_id, action, actor_type, actor_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.BrandID, e.LicenseKeyID, e.LicenseID,
		e.Action, e.ActorType, e.ActorID,
		details, e.IPAddress, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: %w", err)
	}

	return nil
}

func (r *AuditRepo) ListByLicenseKey(ctx context.Context, licenseKeyID uuid.UUID) ([]*domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, brand_id, license_key_id, license_id, action, actor_type, actor_id, details, ip_address, created_at
		 FROM audit_log WHERE license_key_id = $1
		 ORDER BY created_at DESC`,
		licenseKeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByLicenseKey: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var (
			e       domain.AuditEvent
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.BrandID, &e.LicenseKeyID, &e.LicenseID,
			&e.Action, &e.ActorType, &e.ActorID, &details, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("auditRepo.ListByLicenseKey: scan: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("auditRepo.ListByLicenseKey: unmarshal details: %w", err)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auditRepo.ListByLicenseKey: %w", err)
	}

	return events, nil
}
