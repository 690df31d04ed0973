package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/reverie-app/reverie-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/forgot-password", handlers.ForgotPassword)
	r.Post("/api/auth/reset-password", handlers.ResetPassword)

	// Journal entry routes
	r.Get("/api/entries", handlers.ListEntries)
	r.Post("/api/entries", handlers.CreateEntry)
	r.Put("/api/entries/{id}", handlers.UpdateEntry)
	r.Delete("/api/entries/{id}", handlers.DeleteEntry)

	// Mood palette for the editor
	r.Get("/api/moods", handlers.GetMoods)

	// Image attachment routes
	r.Post("/api/images", handlers.UploadImages)
	r.Get("/api/images/resolve", handlers.ResolveImage)
}
