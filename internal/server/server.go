package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/keyline/keyline/internal/api/ws"
	"github.com/keyline/keyline/internal/auth"
	"github.com/keyline/keyline/internal/config"
	"github.com/keyline/keyline/internal/licensing"
	"github.com/keyline/keyline/internal/server/middleware"
	"github.com/keyline/keyline/internal/store/postgres"
	redisstore "github.com/keyline/keyline/internal/store/redis"
)

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Provisioner *licensing.ProvisioningService
	Activator   *licensing.ActivationService
	Checker     *licensing.StatusService
	Querier     *licensing.QueryService
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	guard      *auth.Guard
	pubsub     *redisstore.PubSub // nil when the event stream is disabled
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. pubsub may be nil; the
// WebSocket event stream is then not mounted.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, guard *auth.Guard, svcs Services) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.BrandKeyHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	var hub *ws.Hub
	if pubsub != nil {
		hub = ws.NewHub(pubsub)
	}

	s := &Server{
		router: router,
		store:  store,
		guard:  guard,
		pubsub: pubsub,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with three sub-groups:
	// 1. Public group for product instances: activation and status checks.
	// 2. Brand group authenticated by X-Brand-Key.
	// 3. Admin group authenticated by back-office JWT.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ClientIP())
			r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.PublicPerSecond, cfg.RateLimit.PublicBurst))

			publicConfig := huma.DefaultConfig("Keyline Public API", "1.0.0")
			publicConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			publicAPI := humachi.New(r, publicConfig)
			registerPublicRoutes(publicAPI, store, svcs)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BrandAuth(guard))
			r.Use(middleware.RateLimitByBrand(ctx, cfg.RateLimit.BrandPerSecond, cfg.RateLimit.BrandBurst))

			brandConfig := huma.DefaultConfig("Keyline Brand API", "1.0.0")
			brandConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			brandAPI := humachi.New(r, brandConfig)
			registerBrandRoutes(brandAPI, svcs)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.Admin.JWTSecret))

			adminConfig := huma.DefaultConfig("Keyline Admin API", "1.0.0")
			adminConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			adminAPI := humachi.New(r, adminConfig)
			registerAdminRoutes(adminAPI, store)
		})
	})

	// WebSocket routes, brand-authenticated.
	if hub != nil {
		router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.BrandAuth(guard))
			registerWSRoutes(r, hub)
		})
	}

	// Root-level health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
