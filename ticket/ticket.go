package ticket

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a ticket id is unknown to a store.
var ErrNotFound = errors.New("ticket not found")

// Status values a ticket moves through.
const (
	StatusOpen          = "open"
	StatusPendingReview = "pending_review"
	StatusResolved      = "resolved"
)

// Ticket is the persisted record of one support run: the customer's message,
// the classified category and the final response the workflow produced.
type Ticket struct {
	ID            string         `json:"ticket_id"`
	Message       string         `json:"message"`
	Category      string         `json:"category,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	Response      string         `json:"response,omitempty"`
	Status        string         `json:"status"`
	RequiresHuman bool           `json:"requires_human"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Clone returns a deep copy safe for independent mutation.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	if t.Metadata != nil {
		clone.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// Store persists tickets. Implementations must be safe for concurrent use and
// must not let callers mutate stored records through returned pointers.
type Store interface {
	Save(ticket *Ticket) error
	Get(ticketID string) (*Ticket, error)
	Update(ticketID string, update func(t *Ticket)) (*Ticket, error)
	Delete(ticketID string) error
	List() ([]*Ticket, error)
}
