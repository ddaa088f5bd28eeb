package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the Akademix console server.
type Config struct {
	Port      int
	Version   string
	DataDir   string
	Telemetry TelemetryConfig
	Auth      AuthConfig
	Providers ProvidersConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

type AuthConfig struct {
	// Comma-separated API keys. Empty disables auth (local dev).
	APIKeys string

	// AdminEmail is the account seeded on an empty store.
	AdminEmail string
	AdminName  string
}

// ProvidersConfig seeds the default model providers at startup.
type ProvidersConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string

	OllamaEndpoint string
	OllamaModel    string
}

// EmbeddingConfig selects the embedding backend for materi search.
type EmbeddingConfig struct {
	// Driver is "ollama" or "openai".
	Driver   string
	Model    string
	Endpoint string
	APIKey   string
}

// VectorConfig selects the materi vector index backend.
type VectorConfig struct {
	// Kind is "embedded" (in-memory) or "pgvector".
	Kind       string
	PgURL      string
	Dimensions int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("AKADEMIX_PORT", 8080),
		Version: envStr("AKADEMIX_VERSION", "0.2.0"),
		DataDir: envStr("AKADEMIX_DATA_DIR", ""),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "akademix-console"),
		},
		Auth: AuthConfig{
			APIKeys:    envStr("AKADEMIX_API_KEYS", ""),
			AdminEmail: envStr("AKADEMIX_ADMIN_EMAIL", "admin@akademix.local"),
			AdminName:  envStr("AKADEMIX_ADMIN_NAME", "Administrator"),
		},
		Providers: ProvidersConfig{
			GeminiAPIKey:   envStr("GEMINI_API_KEY", ""),
			GeminiModel:    envStr("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiEndpoint: envStr("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
			OllamaEndpoint: envStr("OLLAMA_ENDPOINT", "http://localhost:11434"),
			OllamaModel:    envStr("OLLAMA_MODEL", "llama3.1"),
		},
		Embedding: EmbeddingConfig{
			Driver:   envStr("AKADEMIX_EMBED_DRIVER", "ollama"),
			Model:    envStr("AKADEMIX_EMBED_MODEL", "nomic-embed-text"),
			Endpoint: envStr("AKADEMIX_EMBED_ENDPOINT", ""),
			APIKey:   envStr("AKADEMIX_EMBED_API_KEY", ""),
		},
		Vector: VectorConfig{
			Kind:       envStr("AKADEMIX_VECTOR_STORE", "embedded"),
			PgURL:      envStr("AKADEMIX_PGVECTOR_URL", ""),
			Dimensions: envInt("AKADEMIX_VECTOR_DIMS", 768),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
