package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// FileStore keeps releases as <dir>/<name>/<version>.json.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Put implements [Store].
func (s *FileStore) Put(ctx context.Context, d *descriptor.Descriptor) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := newRecord(d)
	if err != nil {
		return nil, err
	}
	path, err := s.path(rec.Name, rec.Version)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, err := readRecord(path); err == nil {
		rec.ID = old.ID
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	return rec, nil
}

// Get implements [Store].
func (s *FileStore) Get(ctx context.Context, name, version string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(Key(name), version)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := readRecord(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound(name, version)
	}
	return rec, err
}

// Latest implements [Store].
func (s *FileStore) Latest(ctx context.Context, name string) (*Record, error) {
	return latest(ctx, s, name)
}

// Versions implements [Store].
func (s *FileStore) Versions(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries, err := os.ReadDir(filepath.Join(s.dir, Key(name)))
	s.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, e := range entries {
		if v, ok := strings.CutSuffix(e.Name(), ".json"); ok && !e.IsDir() {
			versions = append(versions, v)
		}
	}
	SortVersions(versions)
	return versions, nil
}

// Close implements [Store].
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key, version string) (string, error) {
	if key == "" || version == "" || strings.ContainsAny(version, `/\`) || strings.HasPrefix(version, ".") {
		return "", derrors.New(derrors.ErrCodeInvalidPath, "invalid release %q %q", key, version)
	}
	return filepath.Join(s.dir, key, version+".json"), nil
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return &rec, nil
}
