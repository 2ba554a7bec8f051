// Package queue hands tickets flagged for human follow-up to the agent desk.
// The Publisher interface keeps the facade independent of the broker; the
// NATS implementation is the production backend, the in-memory one serves
// tests and examples.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/ticket"
)

// DefaultSubject is the subject human-handoff tickets are published on.
const DefaultSubject = "supportmesh.handoff"

// Publisher pushes a ticket onto the human-agent queue.
type Publisher interface {
	Publish(ctx context.Context, t *ticket.Ticket) error
}

// NATSPublisherOptions configure the NATS publisher.
type NATSPublisherOptions struct {
	// Subject overrides DefaultSubject.
	Subject string
	Logger  logging.Logger
}

// NATSPublisher publishes handoff tickets as JSON messages on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  logging.Logger
}

// NewNATSPublisher connects to the given NATS URL. The connection retries in
// the background so a briefly unavailable broker does not fail startup.
func NewNATSPublisher(url string, optFns ...func(o *NATSPublisherOptions)) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return NewNATSPublisherFromConn(nc, optFns...), nil
}

// NewNATSPublisherFromConn wraps an existing connection. The caller keeps
// ownership of the connection unless Close is used.
func NewNATSPublisherFromConn(nc *nats.Conn, optFns ...func(o *NATSPublisherOptions)) *NATSPublisher {
	opts := NATSPublisherOptions{Subject: DefaultSubject, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &NATSPublisher{conn: nc, subject: opts.Subject, logger: opts.Logger}
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, t *ticket.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode ticket %s: %w", t.ID, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish ticket %s: %w", t.ID, err)
	}

	p.logger.Info("ticket handed off", "ticket_id", t.ID, "subject", p.subject)
	return nil
}

// Close drains and closes the underlying connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// InMemoryPublisher records published tickets for tests and examples.
type InMemoryPublisher struct {
	mu      sync.Mutex
	tickets []*ticket.Ticket
	err     error
}

// NewInMemoryPublisher constructs an empty in-memory publisher.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Fail makes every subsequent Publish return err.
func (p *InMemoryPublisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Publish implements Publisher.
func (p *InMemoryPublisher) Publish(_ context.Context, t *ticket.Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tickets = append(p.tickets, t.Clone())
	return nil
}

// Published returns clones of all published tickets in publish order.
func (p *InMemoryPublisher) Published() []*ticket.Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*ticket.Ticket, len(p.tickets))
	for i, t := range p.tickets {
		out[i] = t.Clone()
	}
	return out
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = (*InMemoryPublisher)(nil)
)
