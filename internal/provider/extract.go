package provider

import (
	"encoding/json"
	"strings"

	"github.com/akademix/akademix/pkg/models"
)

// ParseSegments recovers segments from free-text model output. Parsing is
// best-effort with a fixed precedence over the first balanced JSON object
// found in the text:
//
//  1. a "tool_calls" array of {name, args} objects
//  2. a single {name, args} object
//  3. a "response" (or "text") field
//  4. no JSON, or none of the shapes match — the raw text itself
//
// The fallback branch guarantees this never fails past the adapter.
func ParseSegments(raw string) []Segment {
	candidate, ok := extractJSONObject(raw)
	if !ok {
		return []Segment{{Text: strings.TrimSpace(raw)}}
	}

	// Shape 1: {"tool_calls": [{"name": ..., "args": {...}}, ...]}
	var wrapper struct {
		ToolCalls []rawToolCall `json:"tool_calls"`
	}
	if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil && len(wrapper.ToolCalls) > 0 {
		segments := make([]Segment, 0, len(wrapper.ToolCalls))
		for _, tc := range wrapper.ToolCalls {
			if tc.Name == "" {
				continue
			}
			segments = append(segments, Segment{Call: tc.toModel()})
		}
		if len(segments) > 0 {
			return segments
		}
	}

	// Shape 2: a single {"name": ..., "args": {...}} object
	var single rawToolCall
	if err := json.Unmarshal([]byte(candidate), &single); err == nil && single.Name != "" {
		return []Segment{{Call: single.toModel()}}
	}

	// Shape 3: {"response": "..."} or {"text": "..."}
	var textResp struct {
		Response string `json:"response"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal([]byte(candidate), &textResp); err == nil {
		if textResp.Response != "" {
			return []Segment{{Text: textResp.Response}}
		}
		if textResp.Text != "" {
			return []Segment{{Text: textResp.Text}}
		}
	}

	// Shape 4: fallback over failure.
	return []Segment{{Text: strings.TrimSpace(raw)}}
}

// rawToolCall tolerates both "args" and the common "arguments" variant.
type rawToolCall struct {
	Name      string         `json:"name"`
	Args      map[string]any `json:"args"`
	Arguments map[string]any `json:"arguments"`
}

func (tc rawToolCall) toModel() *models.ToolCall {
	args := tc.Args
	if args == nil {
		args = tc.Arguments
	}
	if args == nil {
		args = map[string]any{}
	}
	return &models.ToolCall{Name: tc.Name, Args: args}
}

// extractJSONObject returns the first balanced brace-delimited substring,
// respecting JSON string literals and escapes.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
