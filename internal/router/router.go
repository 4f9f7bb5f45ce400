package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"task-manager-api/internal/config"
	"task-manager-api/internal/handler"
	"task-manager-api/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	Task  *handler.TaskHandler
	Audit *handler.AuditHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v2", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Post("/users", h.User.Register)
		api.With(authMiddleware.RequireAuth).Get("/users", h.User.List)
		api.With(authMiddleware.RequireAuth).Get("/users/{id}", h.User.Get)
		api.With(authMiddleware.RequireAuth).Put("/users/{id}", h.User.Update)
		api.With(authMiddleware.RequireAuth).Delete("/users/{id}", h.User.Delete)

		api.With(authMiddleware.RequireAuth).Get("/tasks", h.Task.List)
		api.With(authMiddleware.RequireAuth).Post("/tasks", h.Task.Create)
		api.With(authMiddleware.RequireAuth).Get("/tasks/{id}", h.Task.Get)
		api.With(authMiddleware.RequireAuth).Put("/tasks/{id}", h.Task.Update)
		api.With(authMiddleware.RequireAuth).Delete("/tasks/{id}", h.Task.Delete)

		api.With(authMiddleware.RequireAuth).Get("/audit", h.Audit.List)
	})

	return r
}
