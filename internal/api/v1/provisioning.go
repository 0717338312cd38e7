package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/licensing"
	"github.com/keyline/keyline/internal/server/middleware"
)

type productGrantBody struct {
	ProductID uuid.UUID  `json:"product_id" doc:"Product to license"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Expiry instant (exclusive); absent = perpetual"`
	MaxSeats  *int       `json:"max_seats,omitempty" minimum:"0" doc:"Seat cap; absent = product default"`
}

type CreateLicenseKeyInput struct {
	Body struct {
		CustomerEmail     string             `json:"customer_email" format:"email" doc:"Customer email the key is issued to"`
		ExternalReference *string            `json:"external_reference,omitempty" maxLength:"255" doc:"Caller-side order or subscription reference"`
		Key               string             `json:"key,omitempty" maxLength:"255" doc:"Explicit key string for migrations; generated when absent"`
		Products          []productGrantBody `json:"products" minItems:"1" doc:"One license is created per product"`
	}
}

type CreateLicenseKeyOutput struct {
	Body LicenseKeyResponse
}

type GetLicenseKeyInput struct {
	Key string `path:"key" doc:"License key string"`
}

type GetLicenseKeyOutput struct {
	Body LicenseKeyResponse
}

type AddLicenseInput struct {
	Key  string `path:"key" doc:"License key string"`
	Body productGrantBody
}

type AddLicenseOutput struct {
	Body LicenseResponse
}

type UpdateLicenseStatusInput struct {
	LicenseID uuid.UUID `path:"licenseID" doc:"License ID"`
	Body      struct {
		Status string `json:"status" enum:"valid,suspended,cancelled" doc:"Target lifecycle status"`
	}
}

type UpdateLicenseStatusOutput struct {
	Body LicenseResponse
}

type FindLicensesInput struct {
	Email string `query:"email" required:"true" format:"email" doc:"Customer email (case-insensitive exact match)"`
}

type FindLicensesOutput struct {
	Body []LicenseKeyResponse
}

type ListActivationsInput struct {
	Key         string `path:"key" doc:"License key string"`
	ProductSlug string `query:"product_slug" required:"true" doc:"Product slug"`
}

type ListActivationsOutput struct {
	Body []ActivationResponse
}

type AuditTrailInput struct {
	Key string `path:"key" doc:"License key string"`
}

type AuditTrailOutput struct {
	Body []AuditEventResponse
}

// RegisterBrandRoutes mounts the brand-facing management endpoints.
// Every handler reads the brand from the authenticated context; the
// brand ID never appears in a path or body.
func RegisterBrandRoutes(api huma.API, provisioner Provisioner, querier Querier) {
	huma.Register(api, huma.Operation{
		OperationID: "create-license-key",
		Method:      http.MethodPost,
		Path:        "/brand/license-keys",
		Summary:     "Issue a new license key",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *CreateLicenseKeyInput) (*CreateLicenseKeyOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		grants := make([]licensing.ProductGrant, 0, len(input.Body.Products))
		for _, g := range input.Body.Products {
			grants = append(grants, licensing.ProductGrant{ProductID: g.ProductID, ExpiresAt: g.ExpiresAt, MaxSeats: g.MaxSeats})
		}

		res, err := provisioner.ProvisionKey(ctx, brandID, licensing.ProvisionInput{
			CustomerEmail:     input.Body.CustomerEmail,
			ExternalReference: input.Body.ExternalReference,
			Key:               input.Body.Key,
			Products:          grants,
		})
		if err != nil {
			return nil, mapDomainError(err)
		}

		return &CreateLicenseKeyOutput{Body: toLicenseKeyResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-license-key",
		Method:      http.MethodGet,
		Path:        "/brand/license-keys/{key}",
		Summary:     "Get a license key with its licenses and seat usage",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *GetLicenseKeyInput) (*GetLicenseKeyOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		res, err := provisioner.GetKeyDetails(ctx, brandID, input.Key)
		if err != nil {
			return nil, mapDomainError(err)
		}

		return &GetLicenseKeyOutput{Body: toLicenseKeyResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-license",
		Method:      http.MethodPost,
		Path:        "/brand/license-keys/{key}/licenses",
		Summary:     "Attach another product license to an existing key",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *AddLicenseInput) (*AddLicenseOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		info, err := provisioner.AddLicense(ctx, brandID, input.Key, licensing.ProductGrant{
			ProductID: input.Body.ProductID,
			ExpiresAt: input.Body.ExpiresAt,
			MaxSeats:  input.Body.MaxSeats,
		})
		if err != nil {
			return nil, mapDomainError(err)
		}

		return &AddLicenseOutput{Body: toLicenseResponse(*info)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-license-status",
		Method:      http.MethodPatch,
		Path:        "/brand/licenses/{licenseID}/status",
		Summary:     "Suspend, resume, or cancel a license",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *UpdateLicenseStatusInput) (*UpdateLicenseStatusOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		lic, err := provisioner.UpdateLicenseStatus(ctx, brandID, input.LicenseID, domain.LicenseStatus(input.Body.Status))
		if err != nil {
			return nil, mapDomainError(err)
		}

		return &UpdateLicenseStatusOutput{Body: LicenseResponse{
			ID:        lic.ID,
			Status:    string(lic.Status),
			ExpiresAt: lic.ExpiresAt,
			MaxSeats:  lic.MaxSeats,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "find-license-keys",
		Method:      http.MethodGet,
		Path:        "/brand/licenses",
		Summary:     "Find license keys by customer email",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *FindLicensesInput) (*FindLicensesOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		results, err := querier.FindByEmail(ctx, brandID, input.Email)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := make([]LicenseKeyResponse, 0, len(results))
		for _, res := range results {
			out = append(out, toLicenseKeyResponse(res))
		}
		return &FindLicensesOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-activations",
		Method:      http.MethodGet,
		Path:        "/brand/license-keys/{key}/activations",
		Summary:     "List all activations for a license, including released seats",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *ListActivationsInput) (*ListActivationsOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		acts, err := querier.ListActivations(ctx, brandID, input.Key, input.ProductSlug)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := make([]ActivationResponse, 0, len(acts))
		for _, a := range acts {
			out = append(out, toActivationResponse(a))
		}
		return &ListActivationsOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-audit-trail",
		Method:      http.MethodGet,
		Path:        "/brand/license-keys/{key}/audit",
		Summary:     "Get the audit history for a license key",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *AuditTrailInput) (*AuditTrailOutput, error) {
		brandID, ok := middleware.BrandIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing brand context")
		}

		events, err := querier.AuditTrail(ctx, brandID, input.Key)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := make([]AuditEventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toAuditEventResponse(e))
		}
		return &AuditTrailOutput{Body: out}, nil
	})
}
