package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/newswire/objectstore"
)

// Store is an in-process objectstore.Store used by tests.
// Object modification times default to the wall clock but can be pinned
// with PutAt to make recency-based selection deterministic.
type Store struct {
	mu      sync.Mutex
	objects map[string]entry
}

type entry struct {
	data     []byte
	modified time.Time
}

var _ objectstore.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{objects: make(map[string]entry)}
}

// ListPrefixes enumerates the immediate sub-prefixes under prefix.
func (s *Store) ListPrefixes(ctx context.Context, prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	for key := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if idx := strings.Index(rest, "/"); idx > 0 {
			seen[rest[:idx]] = true
		}
	}

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes, nil
}

// List returns info for every object under prefix, ordered by key.
func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var infos []objectstore.ObjectInfo
	for key, e := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, objectstore.ObjectInfo{Key: key, LastModified: e.modified})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Get reads an object's payload.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, key)
	}
	data := make([]byte, len(e.data))
	copy(data, e.data)
	return data, nil
}

// Put writes an object stamped with the current time.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	return s.PutAt(key, data, time.Now().UTC())
}

// PutAt writes an object with an explicit modification time.
func (s *Store) PutAt(key string, data []byte, modified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = entry{data: stored, modified: modified}
	return nil
}

// Keys returns every stored key, sorted. Useful for test assertions.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
