// Package conversation runs the admin assistant's turn loop: resolve any
// outstanding confirmation first, otherwise screen the input, consult the
// model, gate mutations, and dispatch what may run. Every turn ends in a
// response envelope; no failure on this path is process-fatal.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akademix/akademix/internal/gate"
	"github.com/akademix/akademix/internal/guardrails"
	"github.com/akademix/akademix/internal/provider"
	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/pkg/models"
)

const systemPrompt = `You are the administrative assistant of an academic records console.
You manage departments (jurusan), study programs (prodi), courses (matkul),
teaching materials (materi), and user accounts. When the user asks for data
or a change, invoke the matching action. Answer in the user's language.
Never invent records; only report what actions return.`

// ModelAdapter is the slice of the provider adapter the loop needs.
type ModelAdapter interface {
	Converse(ctx context.Context, history []models.ChatMessage, systemPrompt, providerID string) ([]provider.Segment, error)
}

// Executor runs a validated batch of tool calls.
type Executor interface {
	Execute(ctx context.Context, calls []models.ToolCall) models.ResponseEnvelope
}

// Service is the conversation loop.
type Service struct {
	sessions   store.SessionStore
	adapter    ModelAdapter
	gate       *gate.Gate
	dispatcher Executor
	screen     *guardrails.Screen
}

// New creates the conversation service.
func New(sessions store.SessionStore, adapter ModelAdapter, g *gate.Gate, d Executor, screen *guardrails.Screen) *Service {
	return &Service{sessions: sessions, adapter: adapter, gate: g, dispatcher: d, screen: screen}
}

// TurnRequest is one user turn. SessionID may be empty for a new session;
// Provider may be empty to use the default provider.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
}

// HandleTurn processes one turn and returns the session ID (newly minted
// when the request carried none) and the envelope to render.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (string, models.ResponseEnvelope) {
	ctx, span := otel.Tracer("akademix-console").Start(ctx, "conversation.turn")
	defer span.End()

	sess, err := s.loadOrCreateSession(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("Session load failed")
		return req.SessionID, models.ErrorEnvelope("could not load the conversation session")
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	var env models.ResponseEnvelope
	if sess.AwaitingConfirmation() {
		// A pending set blocks everything else; the reply resolves it
		// and no model call happens this turn.
		env = s.resolvePending(ctx, sess, req.Message)
	} else {
		env = s.converse(ctx, sess, req)
	}

	s.appendTurn(ctx, sess, req.Message, env)
	return sess.ID, env
}

// resolvePending interprets the reply to an outstanding confirmation.
// Approval dispatches the held calls in their original order; rejection
// and anything unclear discards them. The pending set is claimed from the
// store first, under its lock, so concurrent replies to the same session
// resolve it at most once.
func (s *Service) resolvePending(ctx context.Context, sess *models.Session, reply string) models.ResponseEnvelope {
	pending, err := s.sessions.ClaimPending(ctx, sess.ID)
	sess.Pending = nil
	if err != nil {
		// Another request won the claim; nothing is outstanding anymore.
		return models.TextEnvelope("There is nothing awaiting confirmation.")
	}

	switch s.gate.Resolve(reply) {
	case gate.DecisionApprove:
		log.Info().Str("session", sess.ID).Int("actions", len(pending.Calls)).Msg("Pending actions approved")
		return s.dispatcher.Execute(ctx, pending.Calls)
	case gate.DecisionReject:
		log.Info().Str("session", sess.ID).Msg("Pending actions rejected")
		return models.TextEnvelope("Understood, nothing was changed.")
	default:
		return models.TextEnvelope("I couldn't tell whether that was a yes, so nothing was changed. Ask again if you still want it done.")
	}
}

// converse runs the model path of a turn.
func (s *Service) converse(ctx context.Context, sess *models.Session, req TurnRequest) models.ResponseEnvelope {
	if v := s.screen.CheckInput(req.Message); !v.Passed {
		return models.ErrorEnvelope(v.Reason)
	}

	history := append(sess.ChatHistory(), models.ChatMessage{Role: "user", Content: req.Message})

	providerID := req.Provider
	if providerID == "" {
		providerID = sess.Provider
	}

	segments, err := s.adapter.Converse(ctx, history, systemPrompt, providerID)
	if err != nil {
		return providerErrorEnvelope(err)
	}
	if req.Provider != "" {
		sess.Provider = req.Provider
	}

	var (
		texts []string
		calls []models.ToolCall
	)
	for _, seg := range segments {
		switch {
		case seg.Call != nil:
			calls = append(calls, *seg.Call)
		case seg.Text != "":
			texts = append(texts, seg.Text)
		}
	}

	if len(calls) == 0 {
		if len(texts) == 0 {
			return models.ErrorEnvelope("the model returned an empty response")
		}
		return models.TextEnvelope(strings.Join(texts, "\n"))
	}

	reads, mutations := s.gate.Partition(calls)

	var env models.ResponseEnvelope
	if len(reads) > 0 {
		env = s.dispatcher.Execute(ctx, reads)
	} else {
		env = models.ResponseEnvelope{Success: true}
	}

	if len(mutations) > 0 {
		pending := s.gate.Intercept(mutations)
		sess.Pending = pending
		env.NeedsConfirmation = true
		env.ConfirmationPrompt = pending.Prompt
		env.PendingActions = pending
	}

	if len(texts) > 0 && env.IntroText == "" {
		env.IntroText = strings.Join(texts, "\n")
	}
	return env
}

func (s *Service) loadOrCreateSession(ctx context.Context, req TurnRequest) (*models.Session, error) {
	if req.SessionID != "" {
		sess, err := s.sessions.GetSession(ctx, req.SessionID)
		if err == nil {
			return sess, nil
		}
		var nf *store.ErrNotFound
		if !errors.As(err, &nf) {
			return nil, err
		}
		// Expired or unknown id: start fresh under the same id so the
		// browser keeps its reference.
		sess = &models.Session{ID: req.SessionID, Provider: req.Provider}
		if err := s.sessions.CreateSession(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}

	sess := &models.Session{ID: uuid.NewString(), Provider: req.Provider}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// appendTurn records the user message and the rendered envelope in the
// session history. History write failures are logged, not surfaced; the
// user already has their answer.
func (s *Service) appendTurn(ctx context.Context, sess *models.Session, userMsg string, env models.ResponseEnvelope) {
	now := time.Now().UTC()
	sess.Messages = append(sess.Messages,
		models.Message{Role: "user", Content: userMsg, CreatedAt: now},
		models.Message{Role: "assistant", Content: assistantText(env), Response: &env, CreatedAt: now},
	)
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("Session update failed")
	}
}

func assistantText(env models.ResponseEnvelope) string {
	switch {
	case env.NeedsConfirmation:
		return env.ConfirmationPrompt
	case env.IntroText != "":
		return env.IntroText
	case env.Error != "":
		return env.Error
	default:
		return env.OutroText
	}
}

// providerErrorEnvelope translates the adapter's error taxonomy into a
// message the admin can act on.
func providerErrorEnvelope(err error) models.ResponseEnvelope {
	var (
		cfg     *provider.ConfigError
		unavail *provider.UnavailableError
		timeout *provider.TimeoutError
	)
	switch {
	case errors.As(err, &cfg):
		return models.ErrorEnvelope("the model provider is not configured: " + cfg.Reason)
	case errors.As(err, &timeout):
		return models.ErrorEnvelope("the model took too long to answer; try again")
	case errors.As(err, &unavail):
		return models.ErrorEnvelope("the model provider is unavailable right now")
	default:
		log.Error().Err(err).Msg("Provider call failed")
		return models.ErrorEnvelope("the model request failed")
	}
}
