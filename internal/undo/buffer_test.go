package undo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotledger/internal/core"
)

func TestBuffer_ConsumeOnce(t *testing.T) {
	b := NewBuffer[string](Window)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	b.Capture(1, "groceries list", 3, base)

	snap, err := b.TryConsume(1, base.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "groceries list", snap.Payload)
	assert.Equal(t, int64(3), snap.Position)

	// The snapshot is gone after a successful consume.
	_, err = b.TryConsume(1, base.Add(3*time.Second))
	assert.ErrorIs(t, err, core.ErrNothingToUndo)
}

func TestBuffer_NothingCaptured(t *testing.T) {
	b := NewBuffer[string](Window)

	_, err := b.TryConsume(42, time.Now())
	assert.ErrorIs(t, err, core.ErrNothingToUndo)
}

func TestBuffer_WindowExpiry(t *testing.T) {
	b := NewBuffer[string](Window)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	b.Capture(1, "old note", 1, base)

	// Exactly at the window boundary the snapshot is still usable.
	_, err := b.TryConsume(1, base.Add(Window))
	require.NoError(t, err)

	b.Capture(1, "old note", 1, base)

	_, err = b.TryConsume(1, base.Add(Window+time.Millisecond))
	assert.ErrorIs(t, err, core.ErrUndoExpired)

	// The stale snapshot was cleared, not left behind.
	_, err = b.TryConsume(1, base.Add(Window+time.Second))
	assert.ErrorIs(t, err, core.ErrNothingToUndo)
	assert.Equal(t, 0, b.Size())
}

func TestBuffer_NewDeleteOverwrites(t *testing.T) {
	b := NewBuffer[string](Window)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	b.Capture(1, "first", 1, base)
	b.Capture(1, "second", 5, base.Add(time.Second))

	snap, err := b.TryConsume(1, base.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "second", snap.Payload)
	assert.Equal(t, int64(5), snap.Position)
}

func TestBuffer_OwnersAreIsolated(t *testing.T) {
	b := NewBuffer[string](Window)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	b.Capture(1, "alice's note", 1, base)
	b.Capture(2, "bob's note", 2, base)

	snap, err := b.TryConsume(2, base)
	require.NoError(t, err)
	assert.Equal(t, "bob's note", snap.Payload)

	// Consuming bob's snapshot leaves alice's untouched.
	snap, err = b.TryConsume(1, base)
	require.NoError(t, err)
	assert.Equal(t, "alice's note", snap.Payload)
}

func TestBuffer_StructPayload(t *testing.T) {
	b := NewBuffer[core.Transaction](Window)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	b.Capture(7, core.Transaction{Description: "rent", Type: core.Expense}, 4, base)

	snap, err := b.TryConsume(7, base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "rent", snap.Payload.Description)
	assert.Equal(t, core.Expense, snap.Payload.Type)
	assert.Equal(t, int64(4), snap.Position)
}
