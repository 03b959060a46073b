package storage

import (
	"context"
	"database/sql"
	"fmt"

	"jotledger/internal/core"
)

// positioned bundles the ordering primitives shared by every user-scoped,
// position-ordered table. The table name is a trusted constant, never user
// input.
type positioned struct {
	table string
}

var (
	notesTable        = positioned{table: "notes"}
	transactionsTable = positioned{table: "transactions"}
)

// nextPosition computes max(position)+1 for the owner. Must be called inside
// the same transaction as the insert that uses it.
func (p positioned) nextPosition(ctx context.Context, tx *sql.Tx, owner int64) (int64, error) {
	var next int64
	query := fmt.Sprintf(`SELECT COALESCE(MAX(position), 0) + 1 FROM %s WHERE user_id = ?`, p.table)
	if err := tx.QueryRowContext(ctx, query, owner).Scan(&next); err != nil {
		return 0, fmt.Errorf("next position for %s: %w", p.table, err)
	}
	return next, nil
}

// shiftFrom moves every item with position >= pos up by one, reclaiming the
// slot for a restore. Must run in the same transaction as the insert.
func (p positioned) shiftFrom(ctx context.Context, tx *sql.Tx, owner, pos int64) error {
	query := fmt.Sprintf(`UPDATE %s SET position = position + 1 WHERE user_id = ? AND position >= ?`, p.table)
	if _, err := tx.ExecContext(ctx, query, owner, pos); err != nil {
		return fmt.Errorf("shift %s positions: %w", p.table, err)
	}
	return nil
}

// ownedIDs returns all item ids the owner currently holds in this table.
func (p positioned) ownedIDs(ctx context.Context, tx *sql.Tx, owner int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE user_id = ?`, p.table)
	rows, err := tx.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", p.table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", p.table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// renumber assigns position i+1 to ids[i]. Callers must have validated the
// id set first; the owner filter keeps a foreign id from ever being touched.
func (p positioned) renumber(ctx context.Context, tx *sql.Tx, owner int64, ids []int64) error {
	query := fmt.Sprintf(`UPDATE %s SET position = ? WHERE id = ? AND user_id = ?`, p.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare renumber %s: %w", p.table, err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, int64(i+1), id, owner); err != nil {
			return fmt.Errorf("renumber %s id %d: %w", p.table, id, err)
		}
	}
	return nil
}

// reorder validates that ids is exactly the owner's current id set (no
// missing, extra, duplicate, or foreign ids) and renumbers to 1..N.
func (p positioned) reorder(ctx context.Context, tx *sql.Tx, owner int64, ids []int64) error {
	if len(ids) == 0 {
		return core.ErrInvalidOrder
	}

	owned, err := p.ownedIDs(ctx, tx, owner)
	if err != nil {
		return err
	}

	// Set equality plus a length check: a duplicate in ids shrinks its
	// effective set, so it can never pass both.
	if len(ids) != len(owned) {
		return core.ErrForbidden
	}
	ownedSet := make(map[int64]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			return core.ErrForbidden
		}
		if _, dup := seen[id]; dup {
			return core.ErrForbidden
		}
		seen[id] = struct{}{}
	}

	return p.renumber(ctx, tx, owner, ids)
}

// placeAt resolves the insert position for a restore: a non-positive
// requested position falls back to append semantics, otherwise the original
// slot is reclaimed by shifting later items forward.
func (p positioned) placeAt(ctx context.Context, tx *sql.Tx, owner, requested int64) (int64, error) {
	if requested <= 0 {
		return p.nextPosition(ctx, tx, owner)
	}
	if err := p.shiftFrom(ctx, tx, owner, requested); err != nil {
		return 0, err
	}
	return requested, nil
}
