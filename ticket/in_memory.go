package ticket

import (
	"sync"
	"time"
)

// InMemoryStore is a volatile Store implementation keeping tickets in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Returned tickets are cloned to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
}

// NewInMemoryStore constructs an empty in-memory ticket store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tickets: make(map[string]*Ticket)}
}

// Save stores a clone of the ticket, stamping CreatedAt/UpdatedAt if unset.
func (s *InMemoryStore) Save(ticket *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := ticket.Clone()
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	s.tickets[clone.ID] = clone
	return nil
}

// Get returns a clone of the stored ticket or ErrNotFound.
func (s *InMemoryStore) Get(ticketID string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

// Update applies the mutation to the stored ticket and bumps UpdatedAt.
func (s *InMemoryStore) Update(ticketID string, update func(t *Ticket)) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	update(ticket)
	ticket.UpdatedAt = time.Now().UTC()
	return ticket.Clone(), nil
}

// Delete removes the ticket or returns ErrNotFound.
func (s *InMemoryStore) Delete(ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticketID]; !ok {
		return ErrNotFound
	}
	delete(s.tickets, ticketID)
	return nil
}

// List returns clones of all stored tickets in unspecified order.
func (s *InMemoryStore) List() ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		out = append(out, ticket.Clone())
	}
	return out, nil
}
