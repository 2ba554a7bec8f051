package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps tickets in a single JSON file under the storage directory.
// The whole map is loaded at construction and rewritten on every mutation,
// which is plenty for the volumes a single support deployment sees. Safe for
// concurrent use within one process; not safe across processes.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	tickets map[string]*Ticket
}

// NewFileStore creates the storage directory if needed and loads any existing
// tickets file. A missing or corrupt file starts the store empty.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	s := &FileStore{
		path:    filepath.Join(dir, "tickets.json"),
		tickets: make(map[string]*Ticket),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.flushLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read tickets file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.tickets); err != nil {
			s.tickets = make(map[string]*Ticket)
			if err := s.flushLocked(); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

// Save stores a clone of the ticket and rewrites the file.
func (s *FileStore) Save(ticket *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := ticket.Clone()
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	s.tickets[clone.ID] = clone
	return s.flushLocked()
}

// Get returns a clone of the stored ticket or ErrNotFound.
func (s *FileStore) Get(ticketID string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

// Update applies the mutation, bumps UpdatedAt and rewrites the file.
func (s *FileStore) Update(ticketID string, update func(t *Ticket)) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	update(ticket)
	ticket.UpdatedAt = time.Now().UTC()
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return ticket.Clone(), nil
}

// Delete removes the ticket and rewrites the file, or returns ErrNotFound.
func (s *FileStore) Delete(ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticketID]; !ok {
		return ErrNotFound
	}
	delete(s.tickets, ticketID)
	return s.flushLocked()
}

// List returns clones of all stored tickets in unspecified order.
func (s *FileStore) List() ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		out = append(out, ticket.Clone())
	}
	return out, nil
}

// flushLocked rewrites the tickets file; caller must hold the write lock.
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tickets: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tickets file: %w", err)
	}
	return nil
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
