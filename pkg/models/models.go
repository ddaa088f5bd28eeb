package models

import (
	"time"
)

// ── Academic Entities ────────────────────────────────────────

// Jurusan is a department within the institution.
type Jurusan struct {
	ID        string    `json:"id"`
	Nama      string    `json:"nama"`
	Deskripsi string    `json:"deskripsi,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Jenjang is the degree level of a study program.
type Jenjang string

const (
	JenjangD3 Jenjang = "D3"
	JenjangS1 Jenjang = "S1"
	JenjangS2 Jenjang = "S2"
	JenjangS3 Jenjang = "S3"
)

// ValidJenjang reports whether s is a known degree level.
func ValidJenjang(s string) bool {
	switch Jenjang(s) {
	case JenjangD3, JenjangS1, JenjangS2, JenjangS3:
		return true
	}
	return false
}

// Prodi is a study program belonging to a department.
type Prodi struct {
	ID        string    `json:"id"`
	Nama      string    `json:"nama"`
	Jenjang   Jenjang   `json:"jenjang"`
	JurusanID string    `json:"jurusan_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matkul is a course offered by a study program.
type Matkul struct {
	ID        string    `json:"id"`
	Kode      string    `json:"kode"` // unique course code, e.g. IF-2101
	Nama      string    `json:"nama"`
	SKS       int       `json:"sks"` // credit units
	Semester  int       `json:"semester"`
	ProdiID   string    `json:"prodi_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment is a named link on a teaching material.
type Attachment struct {
	Nama string `json:"nama"`
	URL  string `json:"url"`
}

// Materi is a teaching material attached to a course. Konten holds the
// raw text used for embedding-based search.
type Materi struct {
	ID        string       `json:"id"`
	Judul     string       `json:"judul"`
	MatkulID  string       `json:"matkul_id"`
	Pertemuan int          `json:"pertemuan,omitempty"` // meeting/week number
	Konten    string       `json:"konten,omitempty"`
	URL       string       `json:"url,omitempty"`
	Lampiran  []Attachment `json:"lampiran,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UserRole is the access level of a console account.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleDosen     UserRole = "dosen"
	RoleMahasiswa UserRole = "mahasiswa"
)

// ValidRole reports whether s is a known user role.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleAdmin, RoleDosen, RoleMahasiswa:
		return true
	}
	return false
}

// User is a console account.
type User struct {
	ID        string    `json:"id"`
	Nama      string    `json:"nama"`
	Email     string    `json:"email"` // unique
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ── Conversation Protocol ────────────────────────────────────

// ChatMessage is a single provider-facing message.
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ToolCall is a structured request, proposed by a model, to execute one
// named backend action with arguments. Ephemeral — it lives only within
// one conversation turn until executed or discarded.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// PendingActionSet is an ordered sequence of mutating tool calls awaiting
// user confirmation. At most one is live per session at a time.
type PendingActionSet struct {
	Prompt    string     `json:"prompt"`
	Calls     []ToolCall `json:"calls"`
	CreatedAt time.Time  `json:"created_at"`
}

// Table is one logical tabular result set inside an envelope.
// Rows keep whatever order the store returned them in.
type Table struct {
	Title string           `json:"title"`
	Rows  []map[string]any `json:"rows"`
}

// ResponseEnvelope is the sole contract returned to the presentation layer
// for every conversation turn. Invariant: NeedsConfirmation is true iff
// PendingActions is non-nil and holds at least one call.
type ResponseEnvelope struct {
	Success            bool              `json:"success"`
	IntroText          string            `json:"intro_text,omitempty"`
	Tables             []Table           `json:"tables,omitempty"`
	OutroText          string            `json:"outro_text,omitempty"`
	Error              string            `json:"error,omitempty"`
	NeedsConfirmation  bool              `json:"needs_confirmation,omitempty"`
	ConfirmationPrompt string            `json:"confirmation_prompt,omitempty"`
	PendingActions     *PendingActionSet `json:"pending_actions,omitempty"`
}

// TextEnvelope wraps plain assistant text in a successful envelope.
func TextEnvelope(text string) ResponseEnvelope {
	return ResponseEnvelope{Success: true, IntroText: text}
}

// ErrorEnvelope wraps a failure message in an envelope. Nothing in the
// conversation core is process-fatal; every failure path ends here.
func ErrorEnvelope(msg string) ResponseEnvelope {
	return ResponseEnvelope{Success: false, Error: msg}
}

// Message is one entry in a session's append-only history. Assistant
// messages carry the envelope that was rendered for the turn.
type Message struct {
	Role      string            `json:"role"` // user or assistant
	Content   string            `json:"content"`
	Response  *ResponseEnvelope `json:"response,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Session holds one browser conversation: its history and, while a
// confirmation is outstanding, the pending action set.
type Session struct {
	ID        string            `json:"id"`
	Provider  string            `json:"provider,omitempty"` // last provider used
	Messages  []Message         `json:"messages"`
	Pending   *PendingActionSet `json:"pending,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AwaitingConfirmation reports whether the session has an unresolved
// pending action set. While true, no new model call may start.
func (s *Session) AwaitingConfirmation() bool {
	return s.Pending != nil && len(s.Pending.Calls) > 0
}

// ChatHistory converts the session history to provider-facing messages.
// Envelope payloads are dropped; only the text survives.
func (s *Session) ChatHistory() []ChatMessage {
	out := make([]ChatMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		content := m.Content
		if content == "" && m.Response != nil {
			content = m.Response.IntroText
		}
		out = append(out, ChatMessage{Role: m.Role, Content: content})
	}
	return out
}

// ── Model Providers ──────────────────────────────────────────

// ProviderKind distinguishes how a provider returns tool invocations.
type ProviderKind string

const (
	// ProviderGemini is the cloud provider with native function calling.
	ProviderGemini ProviderKind = "gemini"
	// ProviderOllama is a locally hosted model without structured output;
	// tool calls are recovered from free text.
	ProviderOllama ProviderKind = "ollama"
)

// ModelProvider is a configured model backend.
type ModelProvider struct {
	Name      string         `json:"name"` // unique
	Kind      ProviderKind   `json:"kind"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Model     string         `json:"model,omitempty"`
	Config    map[string]any `json:"config,omitempty"` // api_key etc.
	IsDefault bool           `json:"is_default,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ── Vector Search ────────────────────────────────────────────

// VectorDoc is one embedded chunk of teaching material.
type VectorDoc struct {
	ID        string            `json:"id"`
	MateriID  string            `json:"materi_id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Vector    []float64         `json:"vector,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SearchResult is a scored vector search hit.
type SearchResult struct {
	Doc   VectorDoc `json:"doc"`
	Score float64   `json:"score"`
}
