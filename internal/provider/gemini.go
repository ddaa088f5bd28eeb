package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/pkg/models"
)

// Gemini generateContent wire types. Only the fields this adapter touches.

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  *geminiSchema `json:"parameters,omitempty"`
}

type geminiSchema struct {
	Type       string                   `json:"type"`
	Enum       []string                 `json:"enum,omitempty"`
	Items      *geminiSchema            `json:"items,omitempty"`
	Properties map[string]*geminiSchema `json:"properties,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// converseGemini sends the history plus the declarative action catalog to
// Gemini's generateContent endpoint. The provider's own structured-output
// support returns text and functionCall parts directly — no parsing here,
// only reshaping into segments.
func (a *Adapter) converseGemini(ctx context.Context, p *models.ModelProvider, history []models.ChatMessage, systemPrompt string) ([]Segment, error) {
	apiKey, _ := p.Config["api_key"].(string)
	if apiKey == "" {
		return nil, &ConfigError{Provider: p.Name, Reason: "api_key not configured"}
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	req := geminiRequest{
		Contents: toGeminiContents(history),
		Tools:    []geminiTool{{FunctionDeclarations: a.functionDeclarations()}},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}

	body, _ := json.Marshal(req)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", endpoint, model, apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &UnavailableError{Provider: p.Name, Reason: fmt.Sprintf("status %d: %s", httpResp.StatusCode, string(respBody))}
	}

	var gr geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, &UnavailableError{Provider: p.Name, Reason: "no valid candidate content"}
	}

	var segments []Segment
	for _, part := range gr.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			segments = append(segments, Segment{Call: &models.ToolCall{Name: part.FunctionCall.Name, Args: args}})
		case part.Text != "":
			segments = append(segments, Segment{Text: part.Text})
		}
	}
	if len(segments) == 0 {
		return nil, &UnavailableError{Provider: p.Name, Reason: "candidate contained no usable parts"}
	}
	return segments, nil
}

func toGeminiContents(history []models.ChatMessage) []geminiContent {
	out := make([]geminiContent, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	return out
}

// functionDeclarations converts the action catalog into Gemini function
// declarations.
func (a *Adapter) functionDeclarations() []geminiFunctionDecl {
	specs := a.registry.Specs()
	decls := make([]geminiFunctionDecl, 0, len(specs))
	for _, s := range specs {
		decl := geminiFunctionDecl{Name: s.Name, Description: s.Description}
		if len(s.Params) > 0 {
			schema := &geminiSchema{Type: "object", Properties: make(map[string]*geminiSchema, len(s.Params))}
			for pname, p := range s.Params {
				schema.Properties[pname] = paramSchema(p)
				if p.Required {
					schema.Required = append(schema.Required, pname)
				}
			}
			decl.Parameters = schema
		}
		decls = append(decls, decl)
	}
	return decls
}

func paramSchema(p actions.ParamSpec) *geminiSchema {
	switch p.Type {
	case actions.TypeNumber:
		return &geminiSchema{Type: "number"}
	case actions.TypeEnum:
		return &geminiSchema{Type: "string", Enum: p.Enum}
	case actions.TypeObjectArray:
		return &geminiSchema{Type: "array", Items: &geminiSchema{Type: "object"}}
	default:
		return &geminiSchema{Type: "string"}
	}
}
