package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxObjectBytes is the hard ceiling the backend enforces regardless of
// what the caller validated.
const maxObjectBytes = 20 << 20

// Local stores objects on the filesystem below Root and serves them from
// BaseURL (mounted with fiber's static handler).
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory objects are written to.
func (l *Local) Root() string { return l.root }

func (l *Local) path(id string) (string, error) {
	if id == "" || strings.HasPrefix(id, "/") || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid object id %q", id)
	}
	p := filepath.Join(l.root, filepath.FromSlash(id))
	rel, err := filepath.Rel(l.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("object id %q escapes storage root", id)
	}
	return p, nil
}

// Upload writes the object atomically via a temp file and rename.
func (l *Local) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(in.Data) == 0 || len(in.Data) > maxObjectBytes {
		return nil, fmt.Errorf("%w: size %d", ErrRejected, len(in.Data))
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrRejected, in.ContentType)
	}

	p, err := l.path(in.ID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(in.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	return &Object{
		ID:   in.ID,
		URL:  l.baseURL + "/" + in.ID,
		Size: int64(len(in.Data)),
	}, nil
}

// Delete removes the object. A missing object counts as deleted.
func (l *Local) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := l.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return nil
}
