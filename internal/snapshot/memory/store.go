// Package memory provides a process-local snapshot store.
package memory

import (
	"context"
	"sync"

	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

var _ snapshot.Store = (*Store)(nil)

// Store keeps snapshots in a map.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Load returns a copy of the snapshot under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, snapshot.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of data under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snapshot.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return snapshot.ErrClosed
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return snapshot.ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
