package storage

import (
	"context"
	"fmt"
	"time"

	"jotledger/internal/core"
)

// AuditEvent is one row of the mutation audit trail written by the worker.
type AuditEvent struct {
	ID         int64
	UserID     int64
	ItemKind   core.ItemKind
	Operation  string
	ItemID     int64
	OccurredAt time.Time
}

// AppendAuditEvent records a consumed ledger mutation event.
func (r *SQLiteRepository) AppendAuditEvent(ctx context.Context, ev AuditEvent) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, item_kind, operation, item_id, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, string(ev.ItemKind), ev.Operation, ev.ItemID, ev.OccurredAt); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the most recent audit rows for a user, newest first.
func (r *SQLiteRepository) ListAuditEvents(ctx context.Context, userID int64, limit int) ([]AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, item_kind, operation, item_id, occurred_at FROM audit_log WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var (
			ev   AuditEvent
			kind string
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &kind, &ev.Operation, &ev.ItemID, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.ItemKind = core.ItemKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}
