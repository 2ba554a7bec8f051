// Package storage provides blob persistence for customer-uploaded assets.
// Artifacts are scoped by ticket identifier. The Uploader abstraction turns a
// local file (as received by the upload endpoint) into a stable remote
// reference the image review handler can hand to the vision service.
package storage

import "context"

// Store persists binary artifacts scoped by ticket id. Implementations must
// be safe for concurrent use.
type Store interface {
	Save(ticketID, artifactID string, data []byte) error
	Get(ticketID, artifactID string) ([]byte, error)
	List(ticketID string) ([]string, error)
	Delete(ticketID, artifactID string) error
}

// Uploader moves a local file into durable storage and returns a remote
// reference for it.
type Uploader interface {
	Upload(ctx context.Context, ticketID, localPath string) (string, error)
}
