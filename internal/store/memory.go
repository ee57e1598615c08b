// internal/store/memory.go
//
// In-memory session store.
// This is the persistence layer for active game sessions; sessions are
// mutable objects guarded by their own mutex, so the store only hands out
// pointers.
//
// Characteristics:
//   - Backed by a cache.Cache[*game.Session]: bounded by capacity, and a
//     session idle for longer than ttl is dropped.
//   - Every Get refreshes the session's idle clock.
//   - State is lost when the process restarts.
//   - Get returns ErrNotFound for unknown or expired IDs.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/game"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)
}

// memory is a cache-backed Store implementation.
type memory struct {
	sessions *cache.Cache[*game.Session]
}

// NewMemoryStore constructs an in-memory Store holding at most capacity
// sessions, each expiring after idleTTL without use.
func NewMemoryStore(capacity int, idleTTL time.Duration, opts ...cache.Option) Store {
	return &memory{sessions: cache.New[*game.Session]("sessions", capacity, idleTTL, opts...)}
}

func (m *memory) Save(_ context.Context, s *game.Session) error {
	m.sessions.Set(s.ID(), s)
	return nil
}

func (m *memory) Get(_ context.Context, id string) (*game.Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	m.sessions.Set(id, s)
	return s, nil
}
