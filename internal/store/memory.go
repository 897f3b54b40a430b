// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Used for ephemeral quiz sessions in development/testing, or when
// durability is not required.
//
// Characteristics:
//   - One *game.SessionRecord per owner, replaced (never merged) on Save.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Records are copied on the way in and out so callers cannot alias them.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/noterecall/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                   // guards sessions map
	sessions map[string]*game.SessionRecord // keyed by owner
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.SessionRecord)}
}

// Save replaces the owner's record.
func (m *memory) Save(ctx context.Context, owner string, rec *game.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[owner] = clone(rec)
	return nil
}

// Get looks up the owner's record or returns ErrNotFound.
func (m *memory) Get(ctx context.Context, owner string) (*game.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.sessions[owner]; ok {
		return clone(rec), nil
	}
	return nil, ErrNotFound
}

// Delete drops the owner's record, if any.
func (m *memory) Delete(ctx context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, owner)
	return nil
}
