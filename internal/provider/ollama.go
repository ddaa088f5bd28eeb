package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akademix/akademix/pkg/models"
)

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// converseOllama serializes the conversation into one prompt, instructs
// the model to answer as a single JSON object, and recovers segments from
// the raw text. Free-text models frequently violate the requested format,
// so parsing falls back to returning the raw text rather than failing.
func (a *Adapter) converseOllama(ctx context.Context, p *models.ModelProvider, history []models.ChatMessage, systemPrompt string) ([]Segment, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	model := p.Model
	if model == "" {
		return nil, &ConfigError{Provider: p.Name, Reason: "model not configured"}
	}

	prompt := a.buildPrompt(history, systemPrompt)

	body, _ := json.Marshal(ollamaGenerateRequest{Model: model, Prompt: prompt, Stream: false})
	url := endpoint + "/api/generate"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &UnavailableError{Provider: p.Name, Reason: fmt.Sprintf("status %d: %s", httpResp.StatusCode, string(respBody))}
	}

	var or ollamaGenerateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if or.Response == "" {
		return nil, &UnavailableError{Provider: p.Name, Reason: "empty response"}
	}

	return ParseSegments(or.Response), nil
}

// buildPrompt flattens the history and action catalog into a single
// prompt for models without native tool calling.
func (a *Adapter) buildPrompt(history []models.ChatMessage, systemPrompt string) string {
	var sb strings.Builder

	if systemPrompt != "" {
		sb.WriteString(systemPrompt)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Available actions:\n")
	for _, s := range a.registry.Specs() {
		sb.WriteString("- ")
		sb.WriteString(s.Name)
		if s.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(s.Description)
		}
		if len(s.Params) > 0 {
			params := make([]string, 0, len(s.Params))
			for pname, p := range s.Params {
				label := pname
				if p.Required {
					label += "*"
				}
				params = append(params, label)
			}
			sb.WriteString(" (")
			sb.WriteString(strings.Join(params, ", "))
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nAnswer with exactly one JSON object. To invoke actions use")
	sb.WriteString(` {"tool_calls":[{"name":"...","args":{...}}]}.`)
	sb.WriteString(` To answer in plain language use {"response":"..."}.` + "\n\n")

	for _, m := range history {
		switch m.Role {
		case "assistant":
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("User: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant: ")

	return sb.String()
}
