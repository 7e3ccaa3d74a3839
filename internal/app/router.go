package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskmaster-app/taskmaster/internal/auth"
	"github.com/taskmaster-app/taskmaster/internal/observability"
	"github.com/taskmaster-app/taskmaster/internal/platform/httpx"
	"github.com/taskmaster-app/taskmaster/internal/tasks"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthHandler  *auth.Handler
	TasksHandler *tasks.Handler
	TokenManager *auth.TokenManager
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with TaskMaster defaults.
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

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"name":        "TaskMaster API",
			"version":     Version,
			"description": "Personal Task Management API",
			"endpoints": map[string]string{
				"health": "/health",
				"auth":   "/auth",
				"tasks":  "/tasks",
			},
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   Version,
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(params.TokenManager))
		r.Route("/tasks", params.TasksHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, httpx.KindNotFound, "route not found")
	})

	return r
}
