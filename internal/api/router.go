// Package api wires the HTTP routes for the Akademix console.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/akademix/akademix/internal/api/handlers"
	"github.com/akademix/akademix/internal/api/middleware"
	"github.com/akademix/akademix/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	auth := middleware.NewAPIKeyAuth(cfg.Auth.APIKeys)

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.Middleware)

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Conversational assistant
		r.Post("/chat", h.HandleChat)
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
		})

		// Departments
		r.Route("/jurusan", func(r chi.Router) {
			r.Get("/", h.ListJurusan)
			r.Post("/", h.CreateJurusan)
			r.Route("/{jurusanId}", func(r chi.Router) {
				r.Get("/", h.GetJurusan)
				r.Put("/", h.UpdateJurusan)
				r.Delete("/", h.DeleteJurusan)
			})
		})

		// Study programs
		r.Route("/prodi", func(r chi.Router) {
			r.Get("/", h.ListProdi)
			r.Post("/", h.CreateProdi)
			r.Route("/{prodiId}", func(r chi.Router) {
				r.Get("/", h.GetProdi)
				r.Put("/", h.UpdateProdi)
				r.Delete("/", h.DeleteProdi)
			})
		})

		// Courses
		r.Route("/matkul", func(r chi.Router) {
			r.Get("/", h.ListMatkul)
			r.Post("/", h.CreateMatkul)
			r.Route("/{matkulId}", func(r chi.Router) {
				r.Get("/", h.GetMatkul)
				r.Put("/", h.UpdateMatkul)
				r.Delete("/", h.DeleteMatkul)
			})
		})

		// Teaching materials
		r.Route("/materi", func(r chi.Router) {
			r.Get("/", h.ListMateri)
			r.Post("/", h.CreateMateri)
			r.Post("/reindex", h.ReindexMateri)
			r.Get("/search", h.SearchMateri)
			r.Route("/{materiId}", func(r chi.Router) {
				r.Get("/", h.GetMateri)
				r.Put("/", h.UpdateMateri)
				r.Delete("/", h.DeleteMateri)
			})
		})

		// Accounts
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Delete("/", h.DeleteUser)
			})
		})

		// Model providers
		r.Route("/models", func(r chi.Router) {
			r.Get("/providers", h.ListProviders)
			r.Post("/providers", h.UpsertProvider)
			r.Delete("/providers/{providerName}", h.DeleteProvider)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "akademix-console",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "akademix-console",
		})
	}
}
