package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/licensing"
)

// Wire representations. Domain structs stay JSON-free; everything the
// API returns goes through these.

type LicenseResponse struct {
	ID          uuid.UUID  `json:"id" doc:"License ID"`
	ProductSlug string     `json:"product_slug" doc:"Product this license entitles"`
	Status      string     `json:"status" enum:"valid,suspended,cancelled" doc:"Lifecycle status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" doc:"Expiry instant (exclusive); absent = perpetual"`
	MaxSeats    *int       `json:"max_seats,omitempty" doc:"Seat cap; absent = unlimited"`
	ActiveSeats int        `json:"active_seats" doc:"Currently active seats"`
}

type LicenseKeyResponse struct {
	Key               string            `json:"key" doc:"License key string"`
	CustomerEmail     string            `json:"customer_email"`
	ExternalReference *string           `json:"external_reference,omitempty" doc:"Caller-side order or subscription reference"`
	CreatedAt         time.Time         `json:"created_at"`
	Licenses          []LicenseResponse `json:"licenses"`
}

type ActivationResponse struct {
	ID            uuid.UUID  `json:"id"`
	InstanceID    string     `json:"instance_id"`
	InstanceName  string     `json:"instance_name,omitempty"`
	Active        bool       `json:"active"`
	ActivatedAt   time.Time  `json:"activated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

type BrandResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	DefaultMaxSeats *int      `json:"default_max_seats,omitempty" doc:"Default seat cap for new licenses; absent = unlimited"`
	Active          bool      `json:"active"`
}

type AuditEventResponse struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	LicenseID *uuid.UUID     `json:"license_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toLicenseResponse(info licensing.LicenseInfo) LicenseResponse {
	return LicenseResponse{
		ID:          info.License.ID,
		ProductSlug: info.ProductSlug,
		Status:      string(info.License.Status),
		ExpiresAt:   info.License.ExpiresAt,
		MaxSeats:    info.License.MaxSeats,
		ActiveSeats: info.ActiveSeats,
	}
}

func toLicenseKeyResponse(res *licensing.ProvisionResult) LicenseKeyResponse {
	licenses := make([]LicenseResponse, 0, len(res.Licenses))
	for _, info := range res.Licenses {
		licenses = append(licenses, toLicenseResponse(info))
	}
	return LicenseKeyResponse{
		Key:               res.Key.Key,
		CustomerEmail:     res.Key.CustomerEmail,
		ExternalReference: res.Key.ExternalReference,
		CreatedAt:         res.Key.CreatedAt,
		Licenses:          licenses,
	}
}

func toActivationResponse(a *domain.Activation) ActivationResponse {
	return ActivationResponse{
		ID:            a.ID,
		InstanceID:    a.InstanceID,
		InstanceName:  a.InstanceName,
		Active:        a.Active,
		ActivatedAt:   a.ActivatedAt,
		DeactivatedAt: a.DeactivatedAt,
	}
}

func toBrandResponse(b *domain.Brand) BrandResponse {
	return BrandResponse{
		ID:        b.ID,
		Name:      b.Name,
		Slug:      b.Slug,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		DefaultMaxSeats: p.DefaultMaxSeats,
		Active:          p.Active,
	}
}

func toAuditEventResponse(e *domain.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:        e.ID,
		Action:    string(e.Action),
		ActorType: string(e.ActorType),
		ActorID:   e.ActorID,
		LicenseID: e.LicenseID,
		Details:   e.Details,
		IPAddress: e.IPAddress,
		CreatedAt: e.CreatedAt,
	}
}
