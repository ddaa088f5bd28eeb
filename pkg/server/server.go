// Package server provides the public entry point for initializing the
// Akademix console server.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/internal/api"
	"github.com/akademix/akademix/internal/api/handlers"
	"github.com/akademix/akademix/internal/config"
	"github.com/akademix/akademix/internal/conversation"
	"github.com/akademix/akademix/internal/dataops"
	"github.com/akademix/akademix/internal/dispatcher"
	"github.com/akademix/akademix/internal/embeddings"
	"github.com/akademix/akademix/internal/gate"
	"github.com/akademix/akademix/internal/guardrails"
	"github.com/akademix/akademix/internal/ingest"
	"github.com/akademix/akademix/internal/provider"
	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/internal/telemetry"
	"github.com/akademix/akademix/internal/vectorstore"
	"github.com/akademix/akademix/pkg/models"
)

// Server holds the initialized console.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the record store.
	Store store.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all console components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the console with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore := store.NewMemoryStore()
	log.Info().Msg("Record store initialized")

	seedProviders(ctx, dataStore, cfg.Providers)
	seedAdminUser(ctx, dataStore, cfg.Auth)

	registry, err := actions.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("build action registry: %w", err)
	}

	// Semantic materi search is optional; a missing backend only disables
	// searchMateri and the /materi/search endpoint.
	var indexer *ingest.Indexer
	embedDriver, err := embeddings.NewFromConfig(cfg.Embedding)
	if err != nil {
		log.Warn().Err(err).Msg("Embedding driver unavailable, semantic search disabled")
	} else {
		vecStore, verr := vectorstore.NewFromConfig(ctx, cfg.Vector)
		if verr != nil {
			log.Warn().Err(verr).Msg("Vector store unavailable, semantic search disabled")
		} else {
			indexer = ingest.New(dataStore, embedDriver, vecStore)
			log.Info().Str("embeddings", embedDriver.Kind()).Str("vectors", vecStore.Kind()).Msg("Materi indexer initialized")
		}
	}

	var (
		searcher      dataops.Searcher
		materiIndexer dataops.Indexer
	)
	if indexer != nil {
		searcher = indexer
		materiIndexer = indexer
	}
	ops := dataops.New(dataStore, searcher, materiIndexer)
	disp := dispatcher.New(registry, ops)
	confirmGate := gate.New(registry, nil)
	screen := guardrails.New()
	adapter := provider.NewAdapter(dataStore, registry)
	chat := conversation.New(dataStore, adapter, confirmGate, disp, screen)

	h := handlers.New(dataStore, chat, indexer)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// seedAdminUser creates the configured admin account on an empty store.
func seedAdminUser(ctx context.Context, s store.Store, cfg config.AuthConfig) {
	existing, err := s.ListUsers(ctx)
	if err == nil && len(existing) > 0 {
		return
	}

	u := &models.User{
		ID:    uuid.NewString(),
		Nama:  cfg.AdminName,
		Email: cfg.AdminEmail,
		Role:  models.RoleAdmin,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		log.Warn().Err(err).Msg("Failed to seed admin user")
		return
	}
	log.Info().Str("email", u.Email).Msg("Admin user seeded")
}

// seedProviders registers the model providers named in the environment so
// a fresh install can chat without touching the provider API.
func seedProviders(ctx context.Context, s store.Store, cfg config.ProvidersConfig) {
	existing, err := s.ListProviders(ctx)
	if err == nil && len(existing) > 0 {
		return
	}

	if cfg.GeminiAPIKey != "" {
		p := &models.ModelProvider{
			Name:      "gemini",
			Kind:      models.ProviderGemini,
			Endpoint:  cfg.GeminiEndpoint,
			Model:     cfg.GeminiModel,
			Config:    map[string]any{"api_key": cfg.GeminiAPIKey},
			IsDefault: true,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.UpsertProvider(ctx, p); err != nil {
			log.Warn().Err(err).Msg("Failed to seed gemini provider")
		} else {
			log.Info().Msg("Gemini provider seeded")
		}
	}

	if cfg.OllamaEndpoint != "" {
		p := &models.ModelProvider{
			Name:      "ollama",
			Kind:      models.ProviderOllama,
			Endpoint:  cfg.OllamaEndpoint,
			Model:     cfg.OllamaModel,
			IsDefault: cfg.GeminiAPIKey == "",
			CreatedAt: time.Now().UTC(),
		}
		if err := s.UpsertProvider(ctx, p); err != nil {
			log.Warn().Err(err).Msg("Failed to seed ollama provider")
		} else {
			log.Info().Msg("Ollama provider seeded")
		}
	}
}
