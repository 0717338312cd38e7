package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/auth"
	"github.com/keyline/keyline/internal/domain"
)

type CreateBrandInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Brand display name"`
		Slug string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-safe slug, also the license key prefix"`
	}
}

type CreateBrandOutput struct {
	Body struct {
		Brand  BrandResponse `json:"brand"`
		APIKey string        `json:"api_key" doc:"Brand credential 'slug:secret'. Shown once; only its hash is stored."`
	}
}

type ListBrandsInput struct{}

type ListBrandsOutput struct {
	Body []BrandResponse
}

type RotateBrandKeyInput struct {
	BrandID uuid.UUID `path:"brandID" doc:"Brand ID"`
}

type RotateBrandKeyOutput struct {
	Body struct {
		APIKey string `json:"api_key" doc:"New brand credential. The previous secret stops working immediately."`
	}
}

type CreateProductInput struct {
	BrandID uuid.UUID `path:"brandID" doc:"Brand ID"`
	Body    struct {
		Name            string `json:"name" minLength:"1" maxLength:"255" doc:"Product display name"`
		Slug            string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"Slug, unique within the brand"`
		Description     string `json:"description,omitempty" maxLength:"2000"`
		DefaultMaxSeats *int   `json:"default_max_seats,omitempty" minimum:"0" doc:"Default seat cap for new licenses; absent = unlimited"`
	}
}

type CreateProductOutput struct {
	Body ProductResponse
}

type ListProductsInput struct {
	BrandID uuid.UUID `path:"brandID" doc:"Brand ID"`
}

type ListProductsOutput struct {
	Body []ProductResponse
}

// RegisterAdminRoutes mounts the operator back-office endpoints for
// onboarding brands and their products.
func RegisterAdminRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-brand",
		Method:      http.MethodPost,
		Path:        "/admin/brands",
		Summary:     "Onboard a new brand",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CreateBrandInput) (*CreateBrandOutput, error) {
		secret, hash, err := auth.GenerateBrandSecret()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to generate brand secret", err)
		}

		now := time.Now().UTC()
		b := &domain.Brand{
			ID:         uuid.New(),
			Name:       input.Body.Name,
			Slug:       input.Body.Slug,
			APIKeyHash: hash,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := b.Validate(); err != nil {
			return nil, mapDomainError(err)
		}

		if err := store.Brands().Create(ctx, b); err != nil {
			return nil, mapDomainError(err)
		}

		out := &CreateBrandOutput{}
		out.Body.Brand = toBrandResponse(b)
		out.Body.APIKey = b.Slug + ":" + secret
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-brands",
		Method:      http.MethodGet,
		Path:        "/admin/brands",
		Summary:     "List all brands",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, _ *ListBrandsInput) (*ListBrandsOutput, error) {
		brands, err := store.Brands().List(ctx)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := make([]BrandResponse, 0, len(brands))
		for _, b := range brands {
			out = append(out, toBrandResponse(b))
		}
		return &ListBrandsOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rotate-brand-key",
		Method:      http.MethodPost,
		Path:        "/admin/brands/{brandID}/rotate-key",
		Summary:     "Rotate a brand's API credential",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RotateBrandKeyInput) (*RotateBrandKeyOutput, error) {
		b, err := store.Brands().GetByID(ctx, input.BrandID)
		if err != nil {
			return nil, mapDomainError(err)
		}

		secret, hash, err := auth.GenerateBrandSecret()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to generate brand secret", err)
		}

		b.APIKeyHash = hash
		if err := store.Brands().Update(ctx, b); err != nil {
			return nil, mapDomainError(err)
		}

		out := &RotateBrandKeyOutput{}
		out.Body.APIKey = b.Slug + ":" + secret
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-product",
		Method:      http.MethodPost,
		Path:        "/admin/brands/{brandID}/products",
		Summary:     "Register a product under a brand",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CreateProductInput) (*CreateProductOutput, error) {
		if _, err := store.Brands().GetByID(ctx, input.BrandID); err != nil {
			return nil, mapDomainError(err)
		}

		now := time.Now().UTC()
		p := &domain.Product{
			ID:              uuid.New(),
			BrandID:         input.BrandID,
			Name:            input.Body.Name,
			Slug:            input.Body.Slug,
			Description:     input.Body.Description,
			DefaultMaxSeats: input.Body.DefaultMaxSeats,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := p.Validate(); err != nil {
			return nil, mapDomainError(err)
		}

		if err := store.Products().Create(ctx, p); err != nil {
			return nil, mapDomainError(err)
		}

		return &CreateProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/admin/brands/{brandID}/products",
		Summary:     "List a brand's products",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
		products, err := store.Products().ListByBrand(ctx, input.BrandID)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p))
		}
		return &ListProductsOutput{Body: out}, nil
	})
}
