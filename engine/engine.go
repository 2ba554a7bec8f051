package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// DefaultMaxSteps bounds the number of handler invocations in a single run.
// The router's fail-safe defaults already guarantee termination for sane
// handler output; the step limit backstops a handler pair that directs to
// each other forever.
const DefaultMaxSteps = 16

// Options configures an Engine instance.
type Options struct {
	// Entry is the handler that starts every run.
	Entry core.HandlerID

	// MaxSteps limits handler invocations per run. Zero means DefaultMaxSteps.
	MaxSteps int

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Result is the externally visible outcome of a run. NextDirective is always
// DirectiveNone or a directive naming a registered handler; the internal
// terminate sentinel never leaks to callers.
type Result struct {
	RunID         string
	Response      string
	History       []core.Message
	Metadata      map[string]any
	NextDirective core.Directive
	Steps         int
}

// Engine owns the per-request execution loop. The registry and router are
// immutable after construction and safely shared across concurrent runs; each
// run owns an independent ConversationState, so no locking is needed.
type Engine struct {
	registry *core.Registry
	router   *Router
	entry    core.HandlerID
	maxSteps int
	logger   logging.Logger
}

// New creates an Engine over the given registry. The entry handler defaults
// to language detection.
func New(registry *core.Registry, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Entry:    core.HandlerLanguageDetection,
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if !registry.Has(opts.Entry) {
		return nil, fmt.Errorf("entry handler %q is not registered", opts.Entry)
	}

	return &Engine{
		registry: registry,
		router:   NewRouter(registry, opts.Logger),
		entry:    opts.Entry,
		maxSteps: opts.MaxSteps,
		logger:   opts.Logger,
	}, nil
}

// Submit routes an incoming customer message through the handler pipeline
// until a terminal response is produced.
//
// Boundary-contract violations (malformed history that survives repair,
// shrinking history, a mutated origin entry) are fatal to the request: they
// indicate a core-invariant breach, not a user-input problem. Handler-internal
// faults do not surface here; handlers convert external-service failures into
// user-visible messages and terminate.
func (e *Engine) Submit(ctx context.Context, message string, metadata map[string]any) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	state := core.NewConversationState(message, e.entry, metadata)

	if err := core.AssertWellFormed(state.History, "seed state"); err != nil {
		return nil, err
	}

	e.logger.Info("workflow run started", "run_id", runID, "entry", string(e.entry))

	steps := 0
	for {
		if steps >= e.maxSteps {
			err := fmt.Errorf("workflow exceeded %d steps without terminating", e.maxSteps)
			e.logger.Error("workflow aborted", "run_id", runID, "error", err.Error())
			return nil, err
		}

		next, err := e.step(ctx, runID, state)
		if err != nil {
			e.logger.Error("workflow run failed",
				"run_id", runID,
				"handler", string(state.ActiveHandler),
				"step", steps,
				"error", err.Error(),
			)
			return nil, err
		}
		steps++

		if next == "" {
			break
		}
		state.ActiveHandler = next
	}

	e.logger.Info("workflow run completed", "run_id", runID, "steps", steps, "duration", time.Since(start).String())

	return e.finalize(runID, state, steps), nil
}

// step runs the active handler with validation guards on both sides and asks
// the router for the transition. An empty next id signals termination.
func (e *Engine) step(ctx context.Context, runID string, state *core.ConversationState) (core.HandlerID, error) {
	active := state.ActiveHandler

	handler, ok := e.registry.Get(active)
	if !ok {
		// The router only emits registered ids, so this can only happen for a
		// misconfigured entry handler mutated after construction.
		return "", &core.ContractViolationError{
			Context: "handler lookup",
			Index:   -1,
			Detail:  fmt.Sprintf("active handler %q is not registered", active),
		}
	}

	if err := core.AssertWellFormed(state.History, fmt.Sprintf("before handler %q", active)); err != nil {
		return "", err
	}

	// Advisory capability gate: the directive stays authoritative, a declining
	// handler is only worth a diagnostic.
	if !handler.ShouldHandle(state) {
		e.logger.Debug("handler declined state", "run_id", runID, "handler", string(active))
	}

	inputLen := len(state.History)
	origin := state.History[0]

	result, err := handler.Process(ctx, state)
	if err != nil {
		return "", fmt.Errorf("handler %q failed: %w", active, err)
	}
	if result == nil {
		return "", &core.ContractViolationError{
			Context: fmt.Sprintf("after handler %q", active),
			Index:   -1,
			Detail:  "handler returned nil state",
		}
	}

	// Repair first, then assert, so repairs stay visible and anything the
	// repair could not normalize fails the request immediately.
	clean, repaired := core.RepairHistory(result.History, e.logger)
	if repaired {
		e.logger.Warn("handler returned malformed history entries, repaired", "run_id", runID, "handler", string(active))
	}
	result.History = clean

	boundary := fmt.Sprintf("after handler %q", active)
	if err := core.AssertWellFormed(result.History, boundary); err != nil {
		return "", err
	}
	if len(result.History) < inputLen {
		return "", &core.ContractViolationError{
			Context: boundary,
			Index:   -1,
			Detail:  fmt.Sprintf("history shrank from %d to %d entries", inputLen, len(result.History)),
		}
	}
	if result.History[0] != origin {
		return "", &core.ContractViolationError{
			Context: boundary,
			Index:   0,
			Detail:  "originating message was modified",
		}
	}

	*state = *result

	next, ok := e.router.Next(state)
	if !ok {
		return "", nil
	}
	return next, nil
}

// finalize converts the terminate sentinel back to "no next handler" so the
// internal sentinel never leaks to callers.
func (e *Engine) finalize(runID string, state *core.ConversationState, steps int) *Result {
	directive := state.NextDirective
	if directive.IsTerminate() || directive.IsUnset() {
		directive = core.DirectiveNone
	} else if id, ok := directive.HandlerID(); ok && !e.registry.Has(id) {
		directive = core.DirectiveNone
	}

	response := ""
	if last, ok := state.LastMessage(); ok {
		response = last.Content
	}

	history := make([]core.Message, len(state.History))
	copy(history, state.History)

	return &Result{
		RunID:         runID,
		Response:      response,
		History:       history,
		Metadata:      state.Metadata,
		NextDirective: directive,
		Steps:         steps,
	}
}
