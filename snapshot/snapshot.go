// Package snapshot persists memory state between runs, so a long document
// can be chunked in stages without losing accumulated terminology. The engine
// itself never touches persistence; callers snapshot the store, save it here,
// and restore it into a fresh store later.
package snapshot

import (
	"context"
	"sync"

	"github.com/translatekit/transchunk/memory"
)

// Store persists memory snapshots keyed by run id.
type Store interface {
	// Save stores the snapshot for runID, replacing any previous one.
	Save(ctx context.Context, runID string, snap memory.Snapshot) error

	// Load retrieves the snapshot for runID.
	Load(ctx context.Context, runID string) (memory.Snapshot, bool, error)

	// Delete removes the snapshot for runID.
	Delete(ctx context.Context, runID string) error

	// Close releases resources held by the store.
	Close() error
}

// InMemory is a process-local Store, mainly for tests and single-process
// staged runs.
type InMemory struct {
	mu    sync.RWMutex
	snaps map[string]memory.Snapshot
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{snaps: make(map[string]memory.Snapshot)}
}

// Save stores the snapshot for runID.
func (s *InMemory) Save(_ context.Context, runID string, snap memory.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[runID] = snap
	return nil
}

// Load retrieves the snapshot for runID.
func (s *InMemory) Load(_ context.Context, runID string) (memory.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[runID]
	return snap, ok, nil
}

// Delete removes the snapshot for runID.
func (s *InMemory) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, runID)
	return nil
}

// Close is a no-op.
func (s *InMemory) Close() error { return nil }
