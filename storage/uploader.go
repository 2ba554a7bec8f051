package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/supportmesh/logging"
)

// StoreUploader reads a local file and saves its bytes into a Store, returning
// an artifact reference of the form "artifact://<ticketID>/<artifactID>".
type StoreUploader struct {
	store  Store
	logger logging.Logger
}

// NewStoreUploader creates an uploader backed by the given store.
func NewStoreUploader(store Store, logger logging.Logger) *StoreUploader {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &StoreUploader{store: store, logger: logger}
}

// Upload implements Uploader.
func (u *StoreUploader) Upload(ctx context.Context, ticketID, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", localPath, err)
	}

	artifactID := uuid.NewString() + filepath.Ext(localPath)
	if err := u.store.Save(ticketID, artifactID, data); err != nil {
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}

	ref := fmt.Sprintf("artifact://%s/%s", ticketID, artifactID)
	u.logger.Debug("artifact uploaded", "ticket_id", ticketID, "artifact_id", artifactID, "bytes", len(data))
	return ref, nil
}

// DirUploader copies incoming files into a flat uploads directory with a
// timestamped name, mirroring what the upload endpoint exposes to clients.
// The returned reference is the destination path.
type DirUploader struct {
	dir    string
	logger logging.Logger
}

// NewDirUploader creates the uploads directory if needed.
func NewDirUploader(dir string, logger logging.Logger) (*DirUploader, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DirUploader{dir: dir, logger: logger}, nil
}

// Upload implements Uploader.
func (u *DirUploader) Upload(ctx context.Context, _ string, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", localPath, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), filepath.Base(localPath))
	dest := filepath.Join(u.dir, name)

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}

	u.logger.Debug("upload stored", "path", dest)
	return dest, nil
}
