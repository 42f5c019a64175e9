package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on disk under a directory that the HTTP server
// exposes at publicURL.
type LocalStore struct {
	dir       string
	publicURL string
}

func NewLocalStore(dir, publicURL string) *LocalStore {
	return &LocalStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}
}

// Dir is the directory holding the objects.
func (s *LocalStore) Dir() string {
	return s.dir
}

// MountPath is the URL path the objects must be served under.
func (s *LocalStore) MountPath() string {
	u, err := url.Parse(s.publicURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func (s *LocalStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	target, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("local upload %s: %w", key, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("local upload %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(strings.TrimSpace(rawURL), s.publicURL+"/")
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

func (s *LocalStore) path(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

// validKey accepts clean relative keys under KeyPrefix only.
func validKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && path.Clean(key) == key && !strings.Contains(key, "..")
}
