// Package dispatcher turns an ordered batch of tool calls into a single
// response envelope. Calls run strictly in proposed order, each validated
// against the registry before it may touch the store. Failures are
// independent: one failing call is reported in place and the rest of the
// batch still runs. The batch is never deduplicated — a model proposing
// the same call twice gets it executed twice.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/internal/dataops"
	"github.com/akademix/akademix/pkg/models"
)

// Dispatcher validates and executes tool call batches.
type Dispatcher struct {
	registry *actions.Registry
	ops      *dataops.Operations
}

// New creates a dispatcher over the registry and data operations.
func New(reg *actions.Registry, ops *dataops.Operations) *Dispatcher {
	return &Dispatcher{registry: reg, ops: ops}
}

// Execute runs the batch and folds the outcomes into one envelope.
// Success is true only when every call succeeded; a partial failure keeps
// the successful results and names each failed call with its reason.
func (d *Dispatcher) Execute(ctx context.Context, calls []models.ToolCall) models.ResponseEnvelope {
	var (
		messages []string
		tables   []models.Table
		failures []string
	)

	for i, call := range calls {
		start := time.Now()
		res, err := d.executeOne(ctx, call)
		if err != nil {
			log.Warn().
				Str("action", call.Name).
				Int("position", i).
				Err(err).
				Msg("Action failed")
			failures = append(failures, fmt.Sprintf("%s: %s", call.Name, reason(err)))
			continue
		}
		log.Debug().
			Str("action", call.Name).
			Dur("latency", time.Since(start)).
			Msg("Action complete")
		if res.Message != "" {
			messages = append(messages, res.Message)
		}
		if res.Table != nil {
			tables = append(tables, *res.Table)
		}
	}

	env := models.ResponseEnvelope{
		Success: len(failures) == 0,
		Tables:  tables,
	}
	if len(messages) > 0 {
		env.IntroText = strings.Join(messages, "\n")
	}
	if len(failures) > 0 {
		env.Error = strings.Join(failures, "; ")
		if len(failures) < len(calls) {
			env.OutroText = fmt.Sprintf("%d of %d actions failed.", len(failures), len(calls))
		}
	}
	return env
}

// executeOne validates then performs a single call. Validation failures
// never reach the store.
func (d *Dispatcher) executeOne(ctx context.Context, call models.ToolCall) (*dataops.Result, error) {
	if err := d.registry.Validate(call); err != nil {
		return nil, err
	}
	return d.ops.Perform(ctx, call)
}

// reason strips the action-name prefix a DataError already carries, so the
// envelope does not read "deleteJurusan: deleteJurusan: ...".
func reason(err error) string {
	var de *dataops.DataError
	if errors.As(err, &de) {
		return de.Err.Error()
	}
	return err.Error()
}
