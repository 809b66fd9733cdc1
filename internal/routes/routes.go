package routes

import (
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/handlers"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/middleware"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	auth := middleware.RequireAuth
	optionalAuth := middleware.OptionalAuth
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.With(auth).Get("/api/auth/me", handlers.GetMe)
	r.With(auth).Post("/api/auth/logout", handlers.Logout)
	r.With(auth).Put("/api/auth/profile", handlers.UpdateProfile)

	// Service catalog routes. Static segments are registered alongside the
	// {id} pattern, chi matches the static path first.
	r.With(optionalAuth).Get("/api/services", handlers.ListServices)
	r.Get("/api/services/categories/list", handlers.ListCategories)
	r.With(optionalAuth).Get("/api/services/provider/{providerId}", handlers.ListProviderServices)
	r.With(optionalAuth).Get("/api/services/{id}", handlers.GetService)
	r.With(auth).Post("/api/services", handlers.CreateService)
	r.With(auth).Put("/api/services/{id}", handlers.UpdateService)
	r.With(auth).Delete("/api/services/{id}", handlers.DeleteService)

	// User management routes
	r.With(auth, adminOnly).Get("/api/users", handlers.ListUsers)
	r.With(auth, adminOnly).Get("/api/users/stats/overview", handlers.GetUserStats)
	r.With(auth).Get("/api/users/{id}", handlers.GetUser)
	r.With(auth).Put("/api/users/{id}", handlers.UpdateUser)
	r.With(auth).Delete("/api/users/{id}", handlers.DeleteUser)

	// File upload routes
	r.With(auth).Post("/api/upload", handlers.UploadImage)

	// Health check, bare path kept for load balancers
	r.Get("/api/health", handlers.Health)
	r.Get("/health", handlers.Health)
}
