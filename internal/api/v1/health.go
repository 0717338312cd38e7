package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type HealthInput struct{}

type HealthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// RegisterHealthRoutes mounts the probes. livez always succeeds while the
// process is up; readyz additionally requires the database.
func RegisterHealthRoutes(api huma.API, db Pinger) {
	ok := func() *HealthOutput {
		out := &HealthOutput{}
		out.Body.Status = "ok"
		return out
	}

	huma.Register(api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, _ *HealthInput) (*HealthOutput, error) {
		if err := db.Ping(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("database unavailable")
		}
		return ok(), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "livez",
		Method:      http.MethodGet,
		Path:        "/livez",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
	}, func(context.Context, *HealthInput) (*HealthOutput, error) {
		return ok(), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "readyz",
		Method:      http.MethodGet,
		Path:        "/readyz",
		Summary:     "Readiness probe",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, _ *HealthInput) (*HealthOutput, error) {
		if err := db.Ping(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("database unavailable")
		}
		return ok(), nil
	})
}
