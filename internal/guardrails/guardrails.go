// Package guardrails screens chat input before it reaches a model
// provider. Three checks run in order: a keyword blocklist, heuristic
// prompt injection detection, and a length limit. A failing check stops
// the turn with a reason the user can read.
package guardrails

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Verdict is the outcome of screening one message.
type Verdict struct {
	Passed bool
	Reason string
}

// Screen evaluates input messages against the configured rules.
type Screen struct {
	blockedWords []string
	maxChars     int
}

// Option configures a Screen.
type Option func(*Screen)

// WithBlockedWords sets the keyword blocklist (matched case-insensitively).
func WithBlockedWords(words ...string) Option {
	return func(s *Screen) { s.blockedWords = words }
}

// WithMaxChars sets the maximum message length in runes.
func WithMaxChars(n int) Option {
	return func(s *Screen) { s.maxChars = n }
}

// DefaultMaxChars bounds chat input; anything longer is not a plausible
// console request.
const DefaultMaxChars = 4000

// New creates an input screen.
func New(opts ...Option) *Screen {
	s := &Screen{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckInput screens one user message.
func (s *Screen) CheckInput(text string) Verdict {
	if s.maxChars > 0 && utf8.RuneCountInString(text) > s.maxChars {
		return Verdict{Reason: "message exceeds maximum length"}
	}

	lower := strings.ToLower(text)
	for _, w := range s.blockedWords {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return Verdict{Reason: "message contains blocked content"}
		}
	}

	for _, re := range injectionPatterns {
		if re.MatchString(text) {
			return Verdict{Reason: "message looks like a prompt injection attempt"}
		}
	}

	return Verdict{Passed: true}
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?|directions?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above|your)\s+(instructions?|prompts?|rules?|context)`),
	regexp.MustCompile(`(?i)new\s+instructions?:\s*`),
	regexp.MustCompile(`(?i)system\s*:\s*you\s+are`),
	regexp.MustCompile(`(?i)reveal\s+(your|the)\s+(system\s+)?(prompt|instructions?)`),
	regexp.MustCompile(`(?i)pretend\s+you\s+(are|have)\s+no\s+(restrictions?|rules?|guidelines?)`),
}
