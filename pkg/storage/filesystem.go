package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Filesystem implements Storage using the local filesystem.
type Filesystem struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFilesystem creates a new filesystem-backed storage rooted at baseDir.
func NewFilesystem(baseDir string) (*Filesystem, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, err
	}
	return &Filesystem{baseDir: abs}, nil
}

// Root returns the absolute base directory.
func (f *Filesystem) Root() string {
	return f.baseDir
}

func (f *Filesystem) Write(_ context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (f *Filesystem) Read(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return os.ReadFile(path)
}

// List returns keys matching the prefix.
// A prefix containing a slash lists the directory it points into.
func (f *Filesystem) List(_ context.Context, prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	dir, namePrefix := "", prefix
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir, namePrefix = prefix[:i+1], prefix[i+1:]
	}

	entries, err := os.ReadDir(filepath.Join(f.baseDir, filepath.FromSlash(dir)))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), namePrefix) {
			keys = append(keys, dir+entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// URI returns a file:// URI pointing at the stored key.
func (f *Filesystem) URI(key string) string {
	return "file://" + filepath.ToSlash(filepath.Join(f.baseDir, filepath.FromSlash(key)))
}

// Contains reports whether the absolute path lies inside the storage root.
func (f *Filesystem) Contains(path string) bool {
	rel, err := filepath.Rel(f.baseDir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (f *Filesystem) Close() error {
	return nil
}

func (f *Filesystem) path(key string) (string, error) {
	if key == "" {
		return "", errors.Wrap(ErrInvalidKey, "empty key")
	}
	path := filepath.Join(f.baseDir, filepath.FromSlash(key))
	if !f.Contains(path) || path == f.baseDir {
		return "", errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return path, nil
}
