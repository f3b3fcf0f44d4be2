package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

// MemoryStore is an in-memory Store for testing and development.
type MemoryStore struct {
	// blobs holds the snapshots keyed by name
	blobs map[string][]byte
	// mu protects concurrent access to blobs
	mu sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("put operation cancelled: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modification
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get operation cancelled: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "snapshot not found: %s", key).
			WithContext("key", key)
	}
	return append([]byte(nil), data...), nil
}

var _ Store = (*MemoryStore)(nil)
