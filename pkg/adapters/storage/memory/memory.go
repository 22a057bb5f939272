package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aescanero/dagoc/pkg/domain"
)

// BundleStore implements ports.BundleStore using an in-memory map. Stored
// slices are copied on the way in and out, so callers never share memory.
type BundleStore struct {
	bundles map[string][]byte
	mu      sync.RWMutex
}

// NewBundleStore creates a new in-memory bundle store
func NewBundleStore() *BundleStore {
	return &BundleStore{
		bundles: make(map[string][]byte),
	}
}

// Get returns the encoded bundle stored under key.
func (s *BundleStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.bundles[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Put replaces the entry for key.
func (s *BundleStore) Put(ctx context.Context, key string, data []byte) error {
	stored := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bundles[key] = stored
	return nil
}

// Delete removes the entry for key. Missing keys are not an error.
func (s *BundleStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bundles, key)
	return nil
}

// List returns every stored key, sorted.
func (s *BundleStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.bundles))
	for key := range s.bundles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
