package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// Store is an in-memory implementation of the simplescene.ArchiveStore interface
type Store struct {
	mu       sync.RWMutex
	archives map[string][]byte
	updated  map[string]time.Time
}

// New creates a new in-memory archive store
func New() simplescene.ArchiveStore {
	return &Store{
		archives: make(map[string][]byte),
		updated:  make(map[string]time.Time),
	}
}

// Save stores an archive under the given key, replacing any previous one
func (s *Store) Save(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.archives[key] = data
	s.updated[key] = time.Now().UTC()
	return nil
}

// Open returns a reader for the archive stored under key
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.archives[key]
	if !exists {
		return nil, simplescene.ErrArchiveNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the archive stored under key
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.archives[key]; !exists {
		return simplescene.ErrArchiveNotFound
	}

	delete(s.archives, key)
	delete(s.updated, key)
	return nil
}

// Stat retrieves metadata for the archive stored under key
func (s *Store) Stat(ctx context.Context, key string) (*simplescene.ArchiveInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.archives[key]
	if !exists {
		return nil, simplescene.ErrArchiveNotFound
	}

	return &simplescene.ArchiveInfo{
		Key:       key,
		Size:      int64(len(data)),
		UpdatedAt: s.updated[key],
	}, nil
}

// List returns the keys under the given prefix
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.archives {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
