// Package provider normalizes heterogeneous model backends into one
// internal shape: a sequence of free-text segments and structured tool
// calls. Two provider classes exist — Gemini with native function calling,
// and locally hosted Ollama models whose tool calls are recovered from
// free text. Provider configs live in the store; clients are constructed
// once and injected, never reached for as package globals.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/pkg/models"
	"github.com/rs/zerolog/log"
)

// RequestTimeout is the upper bound for one provider call. The timeout is
// the only cancellable operation in the conversation core.
const RequestTimeout = 60 * time.Second

// Segment is one piece of a normalized provider response: either free
// text or a structured tool call, never both.
type Segment struct {
	Text string           `json:"text,omitempty"`
	Call *models.ToolCall `json:"call,omitempty"`
}

// ── Error taxonomy ──────────────────────────────────────────

// ConfigError reports missing or invalid provider credentials/config.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// UnavailableError reports that the provider returned no usable content.
type UnavailableError struct {
	Provider string
	Reason   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %s", e.Provider, e.Reason)
}

// TimeoutError reports that the provider call exceeded RequestTimeout.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %s timed out after %s", e.Provider, e.Timeout)
}

// ── Adapter ─────────────────────────────────────────────────

// Adapter converses with configured model providers and reshapes their
// responses into segments. Stateless apart from the injected collaborators;
// safe for concurrent use.
type Adapter struct {
	store    store.ProviderStore
	registry *actions.Registry
	client   *http.Client
	timeout  time.Duration
}

// NewAdapter creates a model adapter over the given provider store and
// action registry.
func NewAdapter(s store.ProviderStore, reg *actions.Registry) *Adapter {
	return &Adapter{
		store:    s,
		registry: reg,
		client:   &http.Client{Timeout: RequestTimeout + 5*time.Second},
		timeout:  RequestTimeout,
	}
}

// Converse sends the history to the named provider and returns the
// normalized segment sequence. providerID may be empty, selecting the
// default provider. Side effects: one outbound HTTP call, nothing else.
func (a *Adapter) Converse(ctx context.Context, history []models.ChatMessage, systemPrompt, providerID string) ([]Segment, error) {
	p, err := a.resolveProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	var segments []Segment
	switch p.Kind {
	case models.ProviderGemini:
		segments, err = a.converseGemini(callCtx, p, history, systemPrompt)
	case models.ProviderOllama:
		segments, err = a.converseOllama(callCtx, p, history, systemPrompt)
	default:
		return nil, &ConfigError{Provider: p.Name, Reason: "unsupported provider kind " + string(p.Kind)}
	}

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Provider: p.Name, Timeout: a.timeout}
		}
		return nil, err
	}

	log.Debug().
		Str("provider", p.Name).
		Str("kind", string(p.Kind)).
		Int("segments", len(segments)).
		Dur("latency", time.Since(start)).
		Msg("Provider call complete")

	return segments, nil
}

func (a *Adapter) resolveProvider(ctx context.Context, providerID string) (*models.ModelProvider, error) {
	if providerID != "" {
		p, err := a.store.GetProvider(ctx, providerID)
		if err != nil {
			return nil, &ConfigError{Provider: providerID, Reason: "not configured"}
		}
		return p, nil
	}

	providers, err := a.store.ListProviders(ctx)
	if err != nil || len(providers) == 0 {
		return nil, &ConfigError{Provider: "default", Reason: "no model providers configured"}
	}
	for i := range providers {
		if providers[i].IsDefault {
			return &providers[i], nil
		}
	}
	return &providers[0], nil
}
