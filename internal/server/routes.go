package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/keyline/keyline/internal/api/v1"
	"github.com/keyline/keyline/internal/api/ws"
	"github.com/keyline/keyline/internal/store/postgres"
)

func registerPublicRoutes(api huma.API, store *postgres.Store, svcs Services) {
	v1.RegisterActivationRoutes(api, svcs.Activator, svcs.Checker)
	v1.RegisterHealthRoutes(api, store)
}

func registerBrandRoutes(api huma.API, svcs Services) {
	v1.RegisterBrandRoutes(api, svcs.Provisioner, svcs.Querier)
}

func registerAdminRoutes(api huma.API, store *postgres.Store) {
	v1.RegisterAdminRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/activations", hub.ServeActivations)
}
