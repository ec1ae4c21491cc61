// Package memory provides a generic thread-safe in-memory key-value store
// used by repository adapters.
package memory

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by Store when the requested key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by Insert when the key is already taken.
	ErrExists = errors.New("already exists")
)

// Store is a generic thread-safe in-memory key-value store. Values are
// insert-only; nothing in this service mutates a record after creation.
type Store[V any] struct {
	mu      sync.RWMutex
	data    map[string]V
	keyFunc func(V) string
}

// New creates a Store with a key extractor function.
func New[V any](keyFunc func(V) string) *Store[V] {
	return &Store[V]{
		data:    make(map[string]V),
		keyFunc: keyFunc,
	}
}

// Insert adds v under keyFunc(v), or returns ErrExists.
// unique, if non-nil, is checked against every stored value under the same
// lock, which lets callers enforce secondary unique fields.
func (s *Store[V]) Insert(_ context.Context, v V, unique func(existing V) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.keyFunc(v)
	if _, ok := s.data[key]; ok {
		return ErrExists
	}
	if unique != nil {
		for _, existing := range s.data {
			if unique(existing) {
				return ErrExists
			}
		}
	}
	s.data[key] = v
	return nil
}

// Get returns the value for key, or ErrNotFound if absent.
func (s *Store[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

// Find returns the first value for which pred returns true, or ErrNotFound.
func (s *Store[V]) Find(_ context.Context, pred func(V) bool) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.data {
		if pred(v) {
			return v, nil
		}
	}
	var zero V
	return zero, ErrNotFound
}
