package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/server/middleware"
)

type ActivateInput struct {
	UserAgent string `header:"User-Agent"`
	Body      struct {
		Key          string `json:"key" minLength:"1" maxLength:"255" doc:"License key string"`
		ProductSlug  string `json:"product_slug" minLength:"1" maxLength:"100" doc:"Product to activate"`
		InstanceID   string `json:"instance_id" minLength:"1" maxLength:"255" doc:"Stable installation identifier, e.g. a site URL"`
		InstanceName string `json:"instance_name,omitempty" maxLength:"255" doc:"Human-readable installation name"`
	}
}

type ActivateOutput struct {
	Body struct {
		Activation     ActivationResponse `json:"activation"`
		RemainingSeats *int               `json:"remaining_seats,omitempty" doc:"Seats still free; absent = unlimited"`
		ExpiresAt      *time.Time         `json:"expires_at,omitempty" doc:"License expiry; absent = perpetual"`
	}
}

type DeactivateInput struct {
	Body struct {
		Key         string `json:"key" minLength:"1" maxLength:"255" doc:"License key string"`
		ProductSlug string `json:"product_slug" minLength:"1" maxLength:"100" doc:"Product to deactivate"`
		InstanceID  string `json:"instance_id" minLength:"1" maxLength:"255" doc:"Installation identifier to release"`
	}
}

type DeactivateOutput struct {
	Body struct {
		Activation     ActivationResponse `json:"activation"`
		RemainingSeats *int               `json:"remaining_seats,omitempty"`
	}
}

type StatusInput struct {
	Key         string `query:"key" required:"true" doc:"License key string"`
	ProductSlug string `query:"product_slug" required:"true" doc:"Product slug"`
	InstanceID  string `query:"instance_id" doc:"Optional installation identifier; when set, the response reports whether it holds a seat"`
}

type StatusOutput struct {
	Body struct {
		Valid          bool       `json:"valid"`
		Status         string     `json:"status" enum:"valid,suspended,cancelled"`
		Reason         string     `json:"reason,omitempty" enum:"expired,suspended,cancelled" doc:"Why the license is unusable; present only when valid=false"`
		ExpiresAt      *time.Time `json:"expires_at,omitempty"`
		MaxSeats       *int       `json:"max_seats,omitempty"`
		ActiveSeats    int        `json:"active_seats"`
		RemainingSeats *int       `json:"remaining_seats,omitempty"`
		InstanceActive *bool      `json:"instance_active,omitempty"`
	}
}

// RegisterActivationRoutes mounts the public product-facing endpoints.
// These authenticate by key possession alone; rate limiting and the
// uniform not-found mapping are the abuse controls.
func RegisterActivationRoutes(api huma.API, activator Activator, checker StatusChecker) {
	huma.Register(api, huma.Operation{
		OperationID: "activate-license",
		Method:      http.MethodPost,
		Path:        "/activations",
		Summary:     "Activate an installation seat",
		Tags:        []string{"Activations"},
	}, func(ctx context.Context, input *ActivateInput) (*ActivateOutput, error) {
		meta := domain.ActivationMeta{UserAgent: input.UserAgent}
		if ip, ok := middleware.ClientIPFromContext(ctx); ok {
			meta.IPAddress = ip
		}

		res, err := activator.Activate(ctx, input.Body.Key, input.Body.ProductSlug, input.Body.InstanceID, input.Body.InstanceName, meta)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := &ActivateOutput{}
		out.Body.Activation = toActivationResponse(res.Activation)
		out.Body.RemainingSeats = res.RemainingSeats
		out.Body.ExpiresAt = res.ExpiresAt
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "deactivate-license",
		Method:      http.MethodPost,
		Path:        "/activations/deactivate",
		Summary:     "Release an installation seat",
		Tags:        []string{"Activations"},
	}, func(ctx context.Context, input *DeactivateInput) (*DeactivateOutput, error) {
		res, err := activator.Deactivate(ctx, input.Body.Key, input.Body.ProductSlug, input.Body.InstanceID)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := &DeactivateOutput{}
		out.Body.Activation = toActivationResponse(res.Activation)
		out.Body.RemainingSeats = res.RemainingSeats
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-license-status",
		Method:      http.MethodGet,
		Path:        "/licenses/status",
		Summary:     "Evaluate license validity and seat usage",
		Tags:        []string{"Activations"},
	}, func(ctx context.Context, input *StatusInput) (*StatusOutput, error) {
		res, err := checker.Check(ctx, input.Key, input.ProductSlug, input.InstanceID)
		if err != nil {
			return nil, mapDomainError(err)
		}

		out := &StatusOutput{}
		out.Body.Valid = res.Valid
		out.Body.Status = string(res.Status)
		out.Body.Reason = string(res.Reason)
		out.Body.ExpiresAt = res.ExpiresAt
		out.Body.MaxSeats = res.MaxSeats
		out.Body.ActiveSeats = res.ActiveSeats
		out.Body.RemainingSeats = res.RemainingSeats
		out.Body.InstanceActive = res.InstanceActive
		return out, nil
	})
}
