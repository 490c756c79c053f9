package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/observability"
	"github.com/stewardhq/steward/internal/rbac"
	"github.com/stewardhq/steward/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	AuthGate           auth.Middleware
	UsersHandler       *users.Handler
	RolesHandler       *rbac.Handler
	PermissionsHandler *rbac.PermissionsHandler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Steward defaults. The login and
// verify endpoints are public; the directory routes sit behind the admin gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Use(params.AuthGate.RequireAdmin)
			params.UsersHandler.MountRoutes(r)
		})
	}
	if params.RolesHandler != nil {
		r.Route("/roles", func(r chi.Router) {
			r.Use(params.AuthGate.RequireAdmin)
			params.RolesHandler.MountRoutes(r)
		})
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", func(r chi.Router) {
			r.Use(params.AuthGate.RequireAdmin)
			params.PermissionsHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
