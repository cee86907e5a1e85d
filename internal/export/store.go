package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/youruser/backdrop/internal/util"
)

// ErrNotFound is returned by stores for unknown or expired keys.
var ErrNotFound = errors.New("export: not found")

// Artifact is a stored export.
type Artifact struct {
	Key      string
	Filename string
	Data     []byte
}

// Store persists rendered exports so they can be downloaded later.
type Store interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
	Get(ctx context.Context, key string) (*Artifact, error)
}

func newKey() string { return uuid.NewString() }

// validKey rejects anything that is not a key we issued.
func validKey(key string) bool {
	_, err := uuid.Parse(key)
	return err == nil
}

// LocalStore keeps each export in its own directory under dir.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("export store %q: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := newKey()
	dir := filepath.Join(s.dir, key)
	if err := util.EnsureDir(dir); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.Base(filename)), data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return key, nil
}

func (s *LocalStore) Get(ctx context.Context, key string) (*Artifact, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	dir := filepath.Join(s.dir, key)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		return &Artifact{Key: key, Filename: e.Name(), Data: data}, nil
	}
	return nil, ErrNotFound
}
