// Package undo keeps a single-slot, per-owner snapshot of the last deleted
// item. A new delete overwrites the previous snapshot; a successful undo
// consumes it. Expiry is evaluated lazily at consume time against the
// deletion timestamp, so no background sweep runs.
package undo

import (
	"sync"
	"time"

	"jotledger/internal/core"
)

// Window is how long after deletion a restore is permitted.
const Window = 10 * time.Second

// Snapshot carries everything needed to reconstruct a deleted item.
type Snapshot[T any] struct {
	Payload   T
	Position  int64
	DeletedAt time.Time
}

// Buffer holds at most one snapshot per owner. Keying by owner makes
// cross-user undo structurally impossible. Each item kind gets its own
// Buffer instance, so a note delete never clobbers a transaction snapshot.
type Buffer[T any] struct {
	mu     sync.Mutex
	window time.Duration
	slots  map[int64]Snapshot[T]
}

// NewBuffer creates a buffer with the given undo window.
func NewBuffer[T any](window time.Duration) *Buffer[T] {
	return &Buffer[T]{
		window: window,
		slots:  make(map[int64]Snapshot[T]),
	}
}

// Capture stores a snapshot for the owner, overwriting any previous one.
func (b *Buffer[T]) Capture(owner int64, payload T, position int64, deletedAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.slots[owner] = Snapshot[T]{
		Payload:   payload,
		Position:  position,
		DeletedAt: deletedAt,
	}
}

// TryConsume returns the owner's snapshot and clears it. It reports
// core.ErrNothingToUndo when no snapshot exists and core.ErrUndoExpired
// (clearing the stale snapshot) when the window has passed. A second call
// after a successful one always reports ErrNothingToUndo.
func (b *Buffer[T]) TryConsume(owner int64, now time.Time) (Snapshot[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, ok := b.slots[owner]
	if !ok {
		return Snapshot[T]{}, core.ErrNothingToUndo
	}
	if now.Sub(snap.DeletedAt) > b.window {
		delete(b.slots, owner)
		return Snapshot[T]{}, core.ErrUndoExpired
	}

	delete(b.slots, owner)
	return snap, nil
}

// Size returns the number of live snapshots.
func (b *Buffer[T]) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}
