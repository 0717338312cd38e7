package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type AuditRepo struct {
	s *Store
}

func (r *AuditRepo) Record(_ context.Context, e *domain.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *e
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r *AuditRepo) ListByLicenseKey(_ context.Context, licenseKeyID uuid.UUID) ([]*domain.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.AuditEvent, 0)
	// Newest first.
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		if r.s.audit[i].LicenseKeyID == licenseKeyID {
			cp := *r.s.audit[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
