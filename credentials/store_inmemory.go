package credentials

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the session for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Write(ctx context.Context, fields Session) error {
	return s.Update(ctx, func(current Session) (Session, error) {
		return current.Merge(fields), nil
	})
}

func (s *InMemoryStore) Read(_ context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	return s.Update(ctx, func(Session) (Session, error) {
		return Session{}, nil
	})
}

func (s *InMemoryStore) Update(_ context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.session)
	if errors.Is(err, ErrSkipUpdate) {
		return nil
	}
	if err != nil {
		return err
	}
	s.session = FromMap(next.ToMap())
	return nil
}
