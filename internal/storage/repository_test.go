package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, username string) int64 {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), username, "", "hash")
	require.NoError(t, err)
	return user.ID
}

func tx(description, amount string, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
	}
}

func TestAppendNote_PositionsAreSequential(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	for i, content := range []string{"first", "second", "third"} {
		note, err := repo.AppendNote(ctx, owner, content)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), note.Position)
	}

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{notes[0].Content, notes[1].Content, notes[2].Content})
}

func TestAppendNote_OwnersHaveIndependentSequences(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")

	_, err := repo.AppendNote(ctx, alice, "alice 1")
	require.NoError(t, err)
	_, err = repo.AppendNote(ctx, alice, "alice 2")
	require.NoError(t, err)

	note, err := repo.AppendNote(ctx, bob, "bob 1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.Position)
}

func TestAppendNote_ConcurrentAppendsGetDistinctPositions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.AppendNote(ctx, owner, "note")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, n)

	seen := make(map[int64]bool, n)
	for _, note := range notes {
		assert.False(t, seen[note.Position], "duplicate position %d", note.Position)
		seen[note.Position] = true
	}
	for pos := int64(1); pos <= n; pos++ {
		assert.True(t, seen[pos], "missing position %d", pos)
	}
}

func TestUpdateNote(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")

	note, err := repo.AppendNote(ctx, alice, "draft")
	require.NoError(t, err)

	updated, err := repo.UpdateNote(ctx, alice, note.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.Equal(t, note.Position, updated.Position)

	_, err = repo.UpdateNote(ctx, bob, note.ID, "stolen")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = repo.UpdateNote(ctx, alice, 9999, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteNote_LeavesGap(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	var ids []int64
	for _, content := range []string{"a", "b", "c"} {
		note, err := repo.AppendNote(ctx, owner, content)
		require.NoError(t, err)
		ids = append(ids, note.ID)
	}

	deleted, err := repo.DeleteNote(ctx, owner, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "b", deleted.Content)
	assert.Equal(t, int64(2), deleted.Position)

	// The survivors keep their original positions; the gap stays.
	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(1), notes[0].Position)
	assert.Equal(t, int64(3), notes[1].Position)
}

func TestDeleteNote_OwnershipAndExistence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")

	note, err := repo.AppendNote(ctx, alice, "mine")
	require.NoError(t, err)

	_, err = repo.DeleteNote(ctx, bob, note.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = repo.DeleteNote(ctx, alice, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The failed attempts left the note in place.
	notes, err := repo.ListNotes(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestRestoreNoteAt_ReclaimsOriginalSlot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	var ids []int64
	for _, content := range []string{"a", "b", "c"} {
		note, err := repo.AppendNote(ctx, owner, content)
		require.NoError(t, err)
		ids = append(ids, note.ID)
	}

	deleted, err := repo.DeleteNote(ctx, owner, ids[1])
	require.NoError(t, err)

	restored, err := repo.RestoreNoteAt(ctx, owner, deleted.Content, deleted.Position)
	require.NoError(t, err)
	assert.Equal(t, int64(2), restored.Position)
	assert.NotEqual(t, deleted.ID, restored.ID, "restore assigns a fresh id")

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"a", "b", "c"},
		[]string{notes[0].Content, notes[1].Content, notes[2].Content})
}

func TestRestoreNoteAt_NonPositivePositionAppends(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	_, err := repo.AppendNote(ctx, owner, "a")
	require.NoError(t, err)

	restored, err := repo.RestoreNoteAt(ctx, owner, "restored", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), restored.Position)
}

func TestReorderNotes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")

	var ids []int64
	for _, content := range []string{"a", "b", "c"} {
		note, err := repo.AppendNote(ctx, alice, content)
		require.NoError(t, err)
		ids = append(ids, note.ID)
	}
	foreign, err := repo.AppendNote(ctx, bob, "bob's")
	require.NoError(t, err)

	t.Run("permutation renumbers to 1..N", func(t *testing.T) {
		err := repo.ReorderNotes(ctx, alice, []int64{ids[2], ids[0], ids[1]})
		require.NoError(t, err)

		notes, err := repo.ListNotes(ctx, alice)
		require.NoError(t, err)
		require.Len(t, notes, 3)
		assert.Equal(t, []string{"c", "a", "b"},
			[]string{notes[0].Content, notes[1].Content, notes[2].Content})
		for i, note := range notes {
			assert.Equal(t, int64(i+1), note.Position)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		err := repo.ReorderNotes(ctx, alice, nil)
		assert.ErrorIs(t, err, core.ErrInvalidOrder)
	})

	t.Run("missing id", func(t *testing.T) {
		err := repo.ReorderNotes(ctx, alice, []int64{ids[0], ids[1]})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("foreign id", func(t *testing.T) {
		err := repo.ReorderNotes(ctx, alice, []int64{ids[0], ids[1], foreign.ID})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.ReorderNotes(ctx, alice, []int64{ids[0], ids[1], ids[1]})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("rejected reorders leave positions unchanged", func(t *testing.T) {
		notes, err := repo.ListNotes(ctx, alice)
		require.NoError(t, err)
		require.Len(t, notes, 3)
		assert.Equal(t, []string{"c", "a", "b"},
			[]string{notes[0].Content, notes[1].Content, notes[2].Content})
	})

	t.Run("bob's note untouched", func(t *testing.T) {
		notes, err := repo.ListNotes(ctx, bob)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, int64(1), notes[0].Position)
	})
}

func TestAppendTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	created, err := repo.AppendTransaction(ctx, owner, tx("salary", "2500.00", core.Income))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Position)
	assert.False(t, created.Timestamp.IsZero())

	second, err := repo.AppendTransaction(ctx, owner, tx("rent", "800", core.Expense))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Position)

	txs, err := repo.ListTransactions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "salary", txs[0].Description)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, core.Income, txs[0].Type)
}

func TestUpdateTransaction_KeepsPositionAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	created, err := repo.AppendTransaction(ctx, owner, tx("coffee", "3.50", core.Expense))
	require.NoError(t, err)

	updated, err := repo.UpdateTransaction(ctx, owner, created.ID, tx("lunch", "12.00", core.Expense))
	require.NoError(t, err)
	assert.Equal(t, "lunch", updated.Description)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("12")))
	assert.Equal(t, created.Position, updated.Position)
	assert.True(t, updated.Timestamp.Equal(created.Timestamp))
}

func TestDeleteAndRestoreTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")

	first, err := repo.AppendTransaction(ctx, owner, tx("a", "1", core.Income))
	require.NoError(t, err)
	_, err = repo.AppendTransaction(ctx, owner, tx("b", "2", core.Expense))
	require.NoError(t, err)

	deleted, err := repo.DeleteTransaction(ctx, owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted.Position)

	restored, err := repo.RestoreTransactionAt(ctx, owner, deleted, deleted.Position)
	require.NoError(t, err)
	assert.Equal(t, int64(1), restored.Position)
	assert.True(t, restored.Timestamp.Equal(deleted.Timestamp), "restore keeps the original timestamp")

	txs, err := repo.ListTransactions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "a", txs[0].Description)
	assert.Equal(t, "b", txs[1].Description)
	assert.Equal(t, int64(2), txs[1].Position, "the later entry shifted to make room")
}

func TestSumTransactionAmounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := newTestUser(t, repo, "alice")
	other := newTestUser(t, repo, "bob")

	for _, entry := range []core.Transaction{
		tx("salary", "2500.10", core.Income),
		tx("bonus", "100.25", core.Income),
		tx("rent", "800.05", core.Expense),
	} {
		_, err := repo.AppendTransaction(ctx, owner, entry)
		require.NoError(t, err)
	}
	_, err := repo.AppendTransaction(ctx, other, tx("noise", "999", core.Income))
	require.NoError(t, err)

	income, expense, err := repo.SumTransactionAmounts(ctx, owner)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.RequireFromString("2600.35")), "income = %s", income)
	assert.True(t, expense.Equal(decimal.RequireFromString("800.05")), "expense = %s", expense)
}

func TestSumTransactionAmounts_EmptyLedger(t *testing.T) {
	repo := newTestRepo(t)
	owner := newTestUser(t, repo, "alice")

	income, expense, err := repo.SumTransactionAmounts(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, income.IsZero())
	assert.True(t, expense.IsZero())
}

func TestUsersAndSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "Alice", "hash1")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "Other", "hash2")
	assert.ErrorIs(t, err, core.ErrUsernameTaken)

	fetched, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, "Alice", fetched.FirstName)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)

	expiresAt := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.CreateSession(ctx, "tok1", user.ID, expiresAt))

	session, err := repo.GetSession(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	require.NoError(t, repo.DeleteSession(ctx, "tok1"))
	_, err = repo.GetSession(ctx, "tok1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, "alice", "", "hash")
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.CreateSession(ctx, "stale", user.ID, now.Add(-time.Hour)))
	require.NoError(t, repo.CreateSession(ctx, "live", user.ID, now.Add(time.Hour)))

	n, err := repo.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.GetSession(ctx, "live")
	assert.NoError(t, err)
}

func TestAuditLog(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	for i, op := range []string{"create", "update", "delete"} {
		err := repo.AppendAuditEvent(ctx, AuditEvent{
			UserID:     1,
			ItemKind:   core.KindTransaction,
			Operation:  op,
			ItemID:     int64(i + 1),
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	events, err := repo.ListAuditEvents(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "delete", events[0].Operation, "newest first")
	assert.Equal(t, "update", events[1].Operation)

	events, err = repo.ListAuditEvents(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
