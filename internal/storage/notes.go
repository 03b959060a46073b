package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jotledger/internal/core"
)

// AppendNote inserts a note at the end of the owner's list. The max+1 read
// and the insert run in one transaction.
func (r *SQLiteRepository) AppendNote(ctx context.Context, owner int64, content string) (core.Note, error) {
	var note core.Note
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := notesTable.nextPosition(ctx, tx, owner)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO notes (user_id, content, position) VALUES (?, ?, ?)`,
			owner, content, pos)
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("note insert id: %w", err)
		}

		note = core.Note{ID: id, UserID: owner, Content: content, Position: pos}
		return nil
	})
	return note, err
}

// UpdateNote replaces a note's content after verifying ownership.
func (r *SQLiteRepository) UpdateNote(ctx context.Context, owner, id int64, content string) (core.Note, error) {
	var note core.Note
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != owner {
			return core.ErrForbidden
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE notes SET content = ? WHERE id = ?`, content, id); err != nil {
			return fmt.Errorf("update note: %w", err)
		}

		existing.Content = content
		note = existing
		return nil
	})
	return note, err
}

// DeleteNote removes a note and returns it so the caller can capture an undo
// snapshot. Remaining notes are not renumbered; gaps are tolerated until the
// next reorder or until undo reclaims the slot.
func (r *SQLiteRepository) DeleteNote(ctx context.Context, owner, id int64) (core.Note, error) {
	var note core.Note
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != owner {
			return core.ErrForbidden
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}

		note = existing
		return nil
	})
	return note, err
}

// RestoreNoteAt re-inserts a deleted note at its original position, shifting
// later notes forward. A non-positive position appends instead.
func (r *SQLiteRepository) RestoreNoteAt(ctx context.Context, owner int64, content string, position int64) (core.Note, error) {
	var note core.Note
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := notesTable.placeAt(ctx, tx, owner, position)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO notes (user_id, content, position) VALUES (?, ?, ?)`,
			owner, content, pos)
		if err != nil {
			return fmt.Errorf("restore note: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("note insert id: %w", err)
		}

		note = core.Note{ID: id, UserID: owner, Content: content, Position: pos}
		return nil
	})
	return note, err
}

// ReorderNotes renumbers the owner's notes to match ids exactly.
func (r *SQLiteRepository) ReorderNotes(ctx context.Context, owner int64, ids []int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return notesTable.reorder(ctx, tx, owner, ids)
	})
}

// ListNotes returns the owner's notes ordered by (position, id).
func (r *SQLiteRepository) ListNotes(ctx context.Context, owner int64) ([]core.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, content, position FROM notes WHERE user_id = ? ORDER BY position ASC, id ASC`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []core.Note
	for rows.Next() {
		var n core.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Position); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func getNote(ctx context.Context, tx *sql.Tx, id int64) (core.Note, error) {
	var n core.Note
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, content, position FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.UserID, &n.Content, &n.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, core.ErrNotFound
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}
