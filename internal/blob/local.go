package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local implements episodes.BlobStore on a local directory. It is the
// default store when no S3 bucket is configured and keeps single-node
// deployments free of external object storage.
type Local struct {
	dir string
}

// NewLocal creates a filesystem-backed blob store rooted at dir, creating
// the directory if it does not exist.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.dir, filepath.Base(key))
}

func (l *Local) Put(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(l.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	return nil
}

// Get reads the stored bytes. A missing key yields an error wrapping
// fs.ErrNotExist, matching the S3 store.
func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return data, nil
}

// Delete removes the stored file. Deleting a missing key is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete audio file: %w", err)
	}
	return nil
}
