// Package embeddings provides vector embedding drivers for semantic
// search over teaching material content.
package embeddings

import (
	"context"
	"fmt"

	"github.com/akademix/akademix/internal/config"
)

// Driver generates vector embeddings for batches of text.
type Driver interface {
	// Kind returns the driver type ("ollama", "openai").
	Kind() string
	// Dimensions returns the embedding vector dimensionality.
	Dimensions() int
	// MaxBatchSize returns the max texts per Embed call.
	MaxBatchSize() int
	// Embed generates embeddings, one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	// HealthCheck verifies the driver can produce embeddings.
	HealthCheck(ctx context.Context) error
}

// NewFromConfig constructs the configured embedding driver.
func NewFromConfig(cfg config.EmbeddingConfig) (Driver, error) {
	switch cfg.Driver {
	case "ollama", "":
		return NewOllamaDriver(cfg.Endpoint, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embeddings: openai driver requires an api key")
		}
		var opts []OpenAIOption
		if cfg.Endpoint != "" {
			opts = append(opts, WithOpenAIEndpoint(cfg.Endpoint))
		}
		return NewOpenAIDriver(cfg.APIKey, cfg.Model, opts...), nil
	default:
		return nil, fmt.Errorf("embeddings: unknown driver %q", cfg.Driver)
	}
}
