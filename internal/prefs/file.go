package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// FileStore keeps preferences in a JSON file on the local machine
type FileStore struct {
	path  string
	scope Scope
	now   func() time.Time
	mu    sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string, scope Scope) *FileStore {
	return &FileStore{path: path, scope: scope, now: time.Now}
}

// Get returns the stored value for key if it has not expired
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	e, ok := entries[s.scope.key(key)]
	if !ok || !s.now().Before(e.Expires) {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set stores value for key and drops expired entries
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// a corrupt file is replaced rather than blocking every future write
		entries = map[string]entry{}
	}

	now := s.now()
	for k, e := range entries {
		if !now.Before(e.Expires) {
			delete(entries, k)
		}
	}
	entries[s.scope.key(key)] = entry{Value: value, Expires: now.Add(MaxAge)}

	return s.save(entries)
}

func (s *FileStore) load() (map[string]entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	entries := map[string]entry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}
	return nil
}

// MemoryStore is a process-local store, used when nothing persistent is configured
type MemoryStore struct {
	scope   Scope
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(scope Scope) *MemoryStore {
	return &MemoryStore{scope: scope, now: time.Now, entries: map[string]entry{}}
}

// Get returns the stored value for key if it has not expired
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[s.scope.key(key)]
	if !ok || !s.now().Before(e.Expires) {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set stores value for key
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.scope.key(key)] = entry{Value: value, Expires: s.now().Add(MaxAge)}
	return nil
}
