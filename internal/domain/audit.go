package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditKeyCreated            AuditAction = "license_key_created"
	AuditLicenseCreated        AuditAction = "license_created"
	AuditLicenseStatusChanged  AuditAction = "license_status_changed"
	AuditActivationCreated     AuditAction = "activation_created"
	AuditActivationDeactivated AuditAction = "activation_deactivated"
)

type ActorType string

const (
	ActorBrand   ActorType = "brand"   // brand back-office via API key
	ActorProduct ActorType = "product" // end-user product installation
	ActorAdmin   ActorType = "admin"
	ActorSystem  ActorType = "system"
)

// AuditEvent records who did what to which license. Events are write-only
// history; nothing in the engine reads them back for decisions.
type AuditEvent struct {
	ID           uuid.UUID
	BrandID      uuid.UUID
	LicenseKeyID uuid.UUID
	LicenseID    *uuid.UUID
	Action       AuditAction
	ActorType    ActorType
	ActorID      string
	Details      map[string]any
	IPAddress    string
	CreatedAt    time.Time
}

type AuditRepository interface {
	Record(ctx context.Context, e *AuditEvent) error
	ListByLicenseKey(ctx context.Context, licenseKeyID uuid.UUID) ([]*AuditEvent, error)
}
