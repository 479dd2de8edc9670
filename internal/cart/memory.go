package cart

import (
	"context"
	"sync"
)

// MemoryRepository keeps snapshots in process memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[string]Snapshot)}
}

func (r *MemoryRepository) Load(_ context.Context, sessionID string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[sessionID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	snapshot.Cart = snapshot.Cart.Clone()
	return snapshot, nil
}

func (r *MemoryRepository) Save(_ context.Context, sessionID string, snapshot Snapshot, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshots[sessionID].Version != expectedVersion {
		return ErrStaleSnapshot
	}
	snapshot.Cart = snapshot.Cart.Clone()
	r.snapshots[sessionID] = snapshot
	return nil
}
