package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"jotledger/internal/core"
)

// AppendTransaction inserts a ledger entry at the end of the owner's ledger.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, owner int64, t core.Transaction) (core.Transaction, error) {
	var created core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := transactionsTable.nextPosition(ctx, tx, owner)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, description, amount, type, created_at, position) VALUES (?, ?, ?, ?, ?, ?)`,
			owner, t.Description, t.Amount.String(), string(t.Type), now, pos)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction insert id: %w", err)
		}

		created = core.Transaction{
			ID:          id,
			UserID:      owner,
			Description: t.Description,
			Amount:      t.Amount,
			Type:        t.Type,
			Timestamp:   now,
			Position:    pos,
		}
		return nil
	})
	return created, err
}

// UpdateTransaction replaces description, amount, and type after verifying
// ownership. Position and timestamp are untouched.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, owner, id int64, t core.Transaction) (core.Transaction, error) {
	var updated core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != owner {
			return core.ErrForbidden
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET description = ?, amount = ?, type = ? WHERE id = ?`,
			t.Description, t.Amount.String(), string(t.Type), id); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		existing.Description = t.Description
		existing.Amount = t.Amount
		existing.Type = t.Type
		updated = existing
		return nil
	})
	return updated, err
}

// DeleteTransaction removes a ledger entry and returns it for undo capture.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner, id int64) (core.Transaction, error) {
	var deleted core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != owner {
			return core.ErrForbidden
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}

		deleted = existing
		return nil
	})
	return deleted, err
}

// RestoreTransactionAt re-inserts a deleted ledger entry at its original
// position, keeping its original timestamp.
func (r *SQLiteRepository) RestoreTransactionAt(ctx context.Context, owner int64, t core.Transaction, position int64) (core.Transaction, error) {
	var restored core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := transactionsTable.placeAt(ctx, tx, owner, position)
		if err != nil {
			return err
		}

		ts := t.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, description, amount, type, created_at, position) VALUES (?, ?, ?, ?, ?, ?)`,
			owner, t.Description, t.Amount.String(), string(t.Type), ts, pos)
		if err != nil {
			return fmt.Errorf("restore transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction insert id: %w", err)
		}

		restored = core.Transaction{
			ID:          id,
			UserID:      owner,
			Description: t.Description,
			Amount:      t.Amount,
			Type:        t.Type,
			Timestamp:   ts,
			Position:    pos,
		}
		return nil
	})
	return restored, err
}

// ReorderTransactions renumbers the owner's ledger to match ids exactly.
func (r *SQLiteRepository) ReorderTransactions(ctx context.Context, owner int64, ids []int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return transactionsTable.reorder(ctx, tx, owner, ids)
	})
}

// ListTransactions returns the owner's ledger ordered by (position, id).
func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount, type, created_at, position FROM transactions WHERE user_id = ? ORDER BY position ASC, id ASC`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SumTransactionAmounts aggregates income and expense totals for the owner.
// Amounts are stored as decimal strings and summed in Go to keep full
// precision; SQLite's SUM would coerce them to floats.
func (r *SQLiteRepository) SumTransactionAmounts(ctx context.Context, owner int64) (income, expense decimal.Decimal, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, amount FROM transactions WHERE user_id = ?`, owner)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	income, expense = decimal.Zero, decimal.Zero
	for rows.Next() {
		var typ, raw string
		if err := rows.Scan(&typ, &raw); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		switch core.TransactionType(typ) {
		case core.Income:
			income = income.Add(amount)
		case core.Expense:
			expense = expense.Add(amount)
		}
	}
	return income, expense, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t   core.Transaction
		raw string
		typ string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &raw, &typ, &t.Timestamp, &t.Position); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", raw, err)
	}
	t.Amount = amount
	t.Type = core.TransactionType(typ)
	return t, nil
}

func getTransaction(ctx context.Context, tx *sql.Tx, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, description, amount, type, created_at, position FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
