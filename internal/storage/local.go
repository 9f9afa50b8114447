package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes media to a directory on disk, served statically under
// the /uploads namespace.
type LocalStore struct {
	root string
}

// NewLocalStore ensures the upload directory exists.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Put writes the object and returns its URL path. The key's folder prefix is
// dropped; the URL namespace is fixed regardless of the directory name.
func (s *LocalStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	name := filepath.Base(key)
	path := filepath.Join(s.root, name)

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return "/uploads/" + name, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	path := filepath.Join(s.root, filepath.Base(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// Root returns the backing directory, for wiring the static file route.
func (s *LocalStore) Root() string {
	return strings.TrimSuffix(s.root, "/")
}
