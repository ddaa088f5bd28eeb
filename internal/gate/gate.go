// Package gate enforces human approval before mutating actions execute.
//
// Per conversation turn the gate moves through three states: Idle (no
// pending actions), AwaitingConfirmation (mutating calls captured, nothing
// executed), and resolved (approved and forwarded, or rejected and
// discarded). Read-only calls bypass the gate entirely: mutation requires
// confirmation, reads never do.
package gate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/pkg/models"
)

// Decision is the interpretation of a user's reply to a confirmation prompt.
type Decision int

const (
	DecisionUnclear Decision = iota
	DecisionApprove
	DecisionReject
)

// Recognizer interprets a free-text reply as a confirmation decision.
// The criterion is deliberately pluggable; the default is word-list based.
type Recognizer interface {
	Interpret(text string) Decision
}

// WordListRecognizer matches the reply against affirmative and negative
// word lists (English and Indonesian). Anything ambiguous is Unclear,
// which callers treat as rejection — a destructive action should never
// run on a guess.
type WordListRecognizer struct {
	affirmative map[string]bool
	negative    map[string]bool
}

// NewRecognizer returns the default confirmation recognizer.
func NewRecognizer() *WordListRecognizer {
	return &WordListRecognizer{
		affirmative: wordSet("yes", "y", "yeah", "yep", "ok", "okay", "sure", "confirm", "confirmed", "proceed", "do it", "go ahead", "ya", "iya", "yoi", "setuju", "lanjut", "lanjutkan", "gas", "boleh"),
		negative:    wordSet("no", "n", "nope", "cancel", "stop", "abort", "don't", "dont", "never mind", "nevermind", "tidak", "jangan", "batal", "batalkan", "gak", "nggak", "ga"),
	}
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Interpret classifies the reply. A negative anywhere wins over an
// affirmative, so "yes... actually no" cancels.
func (r *WordListRecognizer) Interpret(text string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.Trim(normalized, ".!?,;: ")
	if normalized == "" {
		return DecisionUnclear
	}

	if r.negative[normalized] {
		return DecisionReject
	}
	if r.affirmative[normalized] {
		return DecisionApprove
	}

	// Token-level scan for longer replies like "yes please" or
	// "jangan dihapus".
	tokens := strings.FieldsFunc(normalized, func(c rune) bool {
		return !('a' <= c && c <= 'z' || '0' <= c && c <= '9' || c == '\'')
	})
	sawAffirm := false
	for _, tok := range tokens {
		if r.negative[tok] {
			return DecisionReject
		}
		if r.affirmative[tok] {
			sawAffirm = true
		}
	}
	if sawAffirm {
		return DecisionApprove
	}
	return DecisionUnclear
}

// Gate intercepts mutating tool calls and holds them for confirmation.
type Gate struct {
	registry   *actions.Registry
	recognizer Recognizer
}

// New creates a confirmation gate. A nil recognizer selects the default.
func New(reg *actions.Registry, rec Recognizer) *Gate {
	if rec == nil {
		rec = NewRecognizer()
	}
	return &Gate{registry: reg, recognizer: rec}
}

// Partition splits calls into read-only ones (dispatched immediately) and
// mutating ones (held for confirmation). Calls naming unknown actions are
// routed with the reads so the dispatcher reports them without a side
// effect. Original order is preserved within each group.
func (g *Gate) Partition(calls []models.ToolCall) (reads, mutations []models.ToolCall) {
	for _, c := range calls {
		spec, ok := g.registry.Lookup(c.Name)
		if ok && spec.Mutating {
			mutations = append(mutations, c)
			continue
		}
		reads = append(reads, c)
	}
	return reads, mutations
}

// Intercept captures mutating calls into a pending set with a
// human-readable summary. Nothing is executed in this state.
func (g *Gate) Intercept(calls []models.ToolCall) *models.PendingActionSet {
	if len(calls) == 0 {
		return nil
	}
	return &models.PendingActionSet{
		Prompt:    g.Prompt(calls),
		Calls:     calls,
		CreatedAt: time.Now().UTC(),
	}
}

// Prompt renders the confirmation question: entity, operation, and key
// argument values for every pending call.
func (g *Gate) Prompt(calls []models.ToolCall) string {
	var sb strings.Builder
	if len(calls) == 1 {
		sb.WriteString("The following action needs your confirmation:\n")
	} else {
		fmt.Fprintf(&sb, "The following %d actions need your confirmation:\n", len(calls))
	}
	for i, c := range calls {
		spec, ok := g.registry.Lookup(c.Name)
		entity, op := c.Name, ""
		if ok {
			entity, op = spec.Entity, spec.Op
		}
		fmt.Fprintf(&sb, "%d. %s %s", i+1, op, entity)
		if summary := summarizeArgs(c.Args); summary != "" {
			sb.WriteString(" (")
			sb.WriteString(summary)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Reply \"yes\" to proceed or \"no\" to cancel.")
	return sb.String()
}

// Resolve interprets the user's reply to an outstanding pending set.
func (g *Gate) Resolve(reply string) Decision {
	return g.recognizer.Interpret(reply)
}

func summarizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := args[k]
		switch tv := v.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s=%s", k, tv))
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%v", k, tv))
		case []any, map[string]any:
			parts = append(parts, fmt.Sprintf("%s=[%d items]", k, lenOf(tv)))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, tv))
		}
	}
	return strings.Join(parts, ", ")
}

func lenOf(v any) int {
	switch tv := v.(type) {
	case []any:
		return len(tv)
	case map[string]any:
		return len(tv)
	}
	return 0
}
