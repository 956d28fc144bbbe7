package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/devadeboye/mini-jira/internal/handlers/middleware"
	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/metrics"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/service/authz"
)

type RouterConfig struct {
	Log            *logger.Logger
	Auth           authService
	Authenticator  middleware.Authenticator
	Tracker        trackerService
	AllowedOrigins []string

	// Login and register bucket, requests per second and burst
	AuthRPS   float64
	AuthBurst int
}

// NewRouter wires the full HTTP surface. Everything outside the
// register, login, refresh, healthz and metrics endpoints requires a
// bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuth(cfg.Auth)
	trackerHandler := NewTracker(cfg.Tracker)
	requireAuth := middleware.Auth(cfg.Authenticator)
	limiter := middleware.NewRateLimiter(cfg.AuthRPS, cfg.AuthBurst)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Log))
	r.Use(metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.With(middleware.RequirePolicy(authz.Policy{
			Permissions: []string{authz.PermProjectCreate},
		})).Post("/projects", trackerHandler.CreateProject)

		r.Get("/projects", trackerHandler.ListProjects)
		r.Get("/projects/{projectID}", trackerHandler.GetProject)
		r.Get("/projects/{projectID}/items", trackerHandler.ListProjectItems)

		r.With(middleware.RequirePolicy(authz.Policy{
			Roles:       []models.Role{models.RoleAdmin},
			Permissions: []string{authz.PermProjectDelete},
		})).Delete("/projects/{projectID}", trackerHandler.DeleteProject)

		sprintManage := middleware.RequirePolicy(authz.Policy{
			Permissions: []string{authz.PermSprintManage},
		})
		r.With(sprintManage).Post("/projects/{projectID}/sprints", trackerHandler.CreateSprint)
		r.With(sprintManage).Post("/sprints/{sprintID}/status", trackerHandler.TransitionSprint)
		r.Get("/sprints/{sprintID}/stats", trackerHandler.SprintStats)

		itemManage := middleware.RequirePolicy(authz.Policy{
			Permissions: []string{authz.PermWorkItemManage},
		})
		r.With(itemManage).Post("/sprints/{sprintID}/items", trackerHandler.CreateWorkItem)
		r.With(itemManage).Patch("/items/{itemID}/status", trackerHandler.SetWorkItemStatus)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(r)
}
