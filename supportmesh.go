// Package supportmesh provides a high-level façade over the core engine and
// service abstractions (tickets, artifacts, queue & logging) enabling rapid
// construction of a support automation pipeline. Most applications interact
// with this package by:
//  1. Creating a SupportMesh via New() with the inference services to use
//     (optionally overriding default in-memory stores)
//  2. Submitting customer messages via Submit()
//  3. Reading back the persisted ticket via Ticket()
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply the file-backed ticket
// store, a NATS publisher and a structured logger.
package supportmesh

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/engine"
	"github.com/hupe1980/supportmesh/handler"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/queue"
	"github.com/hupe1980/supportmesh/storage"
	"github.com/hupe1980/supportmesh/ticket"
)

// Options configures the SupportMesh instance.
type Options struct {
	// TicketStore persists one record per run (defaults to in-memory).
	TicketStore ticket.Store

	// Uploader moves incoming images into artifact storage (defaults to an
	// in-memory artifact store).
	Uploader storage.Uploader

	// Queue receives tickets flagged for human follow-up. Nil disables the
	// handoff; flagged tickets are still persisted with pending status.
	Queue queue.Publisher

	// ConfidenceThreshold filters vision labels in the image review summary.
	// Zero means the handler default.
	ConfidenceThreshold float64

	// MaxSteps limits handler invocations per run. Zero means the engine
	// default.
	MaxSteps int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// SupportMesh is the high-level façade aggregating the engine and services.
type SupportMesh struct {
	opts   Options
	engine *engine.Engine
	store  ticket.Store
	queue  queue.Publisher
	logger logging.Logger
}

// New assembles the full pipeline around the given inference services: the
// language classifier feeds the detection handler, the issue classifier the
// classification handler and the vision analyzer the image review handler.
func New(
	languageClassifier inference.TextClassifier,
	issueClassifier inference.TextClassifier,
	vision inference.VisionAnalyzer,
	optFns ...func(o *Options),
) (*SupportMesh, error) {
	opts := Options{
		TicketStore: ticket.NewInMemoryStore(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.TicketStore == nil {
		opts.TicketStore = ticket.NewInMemoryStore()
	}
	if opts.Uploader == nil {
		opts.Uploader = storage.NewStoreUploader(storage.NewInMemoryStore(), opts.Logger)
	}

	registry, err := core.NewRegistry(
		handler.NewLanguageDetection(languageClassifier, opts.Logger),
		handler.NewClassification(issueClassifier, opts.Logger),
		handler.NewImageReview(opts.Uploader, vision, func(o *handler.ImageReviewOptions) {
			o.ConfidenceThreshold = opts.ConfidenceThreshold
			o.Logger = opts.Logger
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build handler registry: %w", err)
	}

	eng, err := engine.New(registry, func(o *engine.Options) {
		o.MaxSteps = opts.MaxSteps
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &SupportMesh{
		opts:   opts,
		engine: eng,
		store:  opts.TicketStore,
		queue:  opts.Queue,
		logger: opts.Logger,
	}, nil
}

// SubmitInput carries one customer message into the pipeline.
type SubmitInput struct {
	// Message is the customer's complaint text.
	Message string

	// ImageURL optionally references an already uploaded image.
	ImageURL string

	// TicketID reuses an existing id; empty generates a new one.
	TicketID string
}

// SubmitOutput bundles the run result with the persisted ticket.
type SubmitOutput struct {
	Ticket *ticket.Ticket
	Result *engine.Result
}

// Submit runs the message through the workflow, persists the outcome as a
// ticket and, when the run flagged human follow-up, hands the ticket to the
// queue. A queue failure is logged but does not fail the submission; the
// ticket stays persisted with pending status for a later sweep.
func (m *SupportMesh) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	if input.Message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	ticketID := input.TicketID
	if ticketID == "" {
		ticketID = uuid.NewString()
	}

	metadata := map[string]any{"ticket_id": ticketID}
	if input.ImageURL != "" {
		metadata[core.MetaImageURL] = input.ImageURL
	}

	result, err := m.engine.Submit(ctx, input.Message, metadata)
	if err != nil {
		return nil, err
	}

	tk := m.buildTicket(ticketID, input, result)
	if err := m.store.Save(tk); err != nil {
		return nil, fmt.Errorf("failed to persist ticket %s: %w", ticketID, err)
	}

	if tk.RequiresHuman && m.queue != nil {
		if err := m.queue.Publish(ctx, tk); err != nil {
			m.logger.Error("handoff publish failed", "ticket_id", tk.ID, "error", err.Error())
		}
	}

	return &SubmitOutput{Ticket: tk, Result: result}, nil
}

// Ticket returns the persisted record for a previous submission.
func (m *SupportMesh) Ticket(ticketID string) (*ticket.Ticket, error) {
	return m.store.Get(ticketID)
}

// Tickets returns all persisted tickets.
func (m *SupportMesh) Tickets() ([]*ticket.Ticket, error) {
	return m.store.List()
}

// buildTicket derives the persisted record from the run outcome.
func (m *SupportMesh) buildTicket(ticketID string, input SubmitInput, result *engine.Result) *ticket.Ticket {
	tk := &ticket.Ticket{
		ID:       ticketID,
		Message:  input.Message,
		ImageURL: input.ImageURL,
		Response: result.Response,
		Status:   ticket.StatusResolved,
		Metadata: result.Metadata,
	}

	if category, ok := result.Metadata[core.MetaCategory].(string); ok {
		tk.Category = category
	}
	if flagged, ok := result.Metadata[core.MetaRequiresHuman].(bool); ok && flagged {
		tk.RequiresHuman = true
		tk.Status = ticket.StatusPendingReview
	}

	return tk
}
