// Package vectorstore holds the materi vector index behind a small driver
// interface: an in-memory brute-force store for development, pgvector for
// installations with a PostgreSQL instance.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/akademix/akademix/internal/config"
	"github.com/akademix/akademix/pkg/models"
)

// Driver is a materi vector index backend.
type Driver interface {
	// Kind returns the backend type ("embedded", "pgvector").
	Kind() string
	// Upsert inserts or replaces embedded chunks.
	Upsert(ctx context.Context, docs []models.VectorDoc) error
	// Search returns the topK nearest chunks by cosine similarity.
	Search(ctx context.Context, vector []float64, topK int) ([]models.SearchResult, error)
	// DeleteByMateri removes every chunk belonging to one materi.
	DeleteByMateri(ctx context.Context, materiID string) error
	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)
	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}

// NewFromConfig constructs the configured vector index backend.
func NewFromConfig(ctx context.Context, cfg config.VectorConfig) (Driver, error) {
	switch cfg.Kind {
	case "embedded", "":
		return NewEmbeddedStore(), nil
	case "pgvector":
		if cfg.PgURL == "" {
			return nil, fmt.Errorf("vectorstore: pgvector requires a connection url")
		}
		return NewPgvectorStore(ctx, cfg.PgURL, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("vectorstore: unknown kind %q", cfg.Kind)
	}
}
