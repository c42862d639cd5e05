package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/taskmaster/taskmaster/internal/api/handlers"
	"github.com/taskmaster/taskmaster/internal/api/middleware"
	"github.com/taskmaster/taskmaster/internal/service"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	taskHandler := handlers.NewTaskHandler(services.Task)

	r.Route("/auth", func(r chi.Router) {
		// Public auth routes
		r.Post("/create", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/me", authHandler.Me)
			r.Patch("/me", authHandler.UpdateMe)
			r.Delete("/me", authHandler.DeleteMe)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Task routes, all protected and scoped to the caller
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))
		r.Post("/create", taskHandler.Create)
		r.Get("/all", taskHandler.List)
		r.Get("/search", taskHandler.Search)
		r.Get("/{id}", taskHandler.Get)
		r.Patch("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
