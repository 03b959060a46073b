package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jotledger/internal/amqp"
	"jotledger/internal/cache"
	"jotledger/internal/core"
	applog "jotledger/internal/log"
	"jotledger/internal/undo"
)

// LedgerStore is the durable store surface the ledger service needs.
type LedgerStore interface {
	AppendTransaction(ctx context.Context, owner int64, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, owner, id int64, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, owner, id int64) (core.Transaction, error)
	RestoreTransactionAt(ctx context.Context, owner int64, t core.Transaction, position int64) (core.Transaction, error)
	ReorderTransactions(ctx context.Context, owner int64, ids []int64) error
	ListTransactions(ctx context.Context, owner int64) ([]core.Transaction, error)
	SumTransactionAmounts(ctx context.Context, owner int64) (income, expense decimal.Decimal, err error)
}

// TotalsSummary is the aggregate view of a user's ledger. Balance is always
// derived from the (possibly cached) totals, never cached itself.
type TotalsSummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// LedgerService orchestrates the transaction ledger: input validation, the
// atomic store operation, totals cache invalidation after commit, undo
// capture on delete, and event publishing.
type LedgerService struct {
	store  LedgerStore
	undo   *undo.Buffer[core.Transaction]
	totals *cache.TotalsCache
	events *amqp.Client
}

func NewLedgerService(store LedgerStore, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		undo:   undo.NewBuffer[core.Transaction](undo.Window),
		totals: cache.NewTotalsCache(cache.TotalsTTL),
		events: events,
	}
}

// Add validates and appends a transaction at the end of the owner's ledger.
func (s *LedgerService) Add(ctx context.Context, owner int64, description, amountStr, typeStr string) (core.Transaction, error) {
	t, err := validateTransactionInput(description, amountStr, typeStr)
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.AppendTransaction(ctx, owner, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	s.totals.Invalidate(owner)
	s.publishEvent(ctx, applog.OpCreate, owner, created.ID)
	return created, nil
}

// Update validates and replaces a transaction's description, amount, and
// type. The totals cache is invalidated even for description-only changes.
func (s *LedgerService) Update(ctx context.Context, owner, id int64, description, amountStr, typeStr string) (core.Transaction, error) {
	t, err := validateTransactionInput(description, amountStr, typeStr)
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, owner, id, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.totals.Invalidate(owner)
	s.publishEvent(ctx, applog.OpUpdate, owner, updated.ID)
	return updated, nil
}

// Reorder renumbers the owner's ledger to match ids exactly.
func (s *LedgerService) Reorder(ctx context.Context, owner int64, ids []int64) error {
	if err := s.store.ReorderTransactions(ctx, owner, ids); err != nil {
		return err
	}

	s.totals.Invalidate(owner)
	s.publishEvent(ctx, applog.OpReorder, owner, 0)
	return nil
}

// Delete removes a transaction and captures an undo snapshot of its full
// payload and position.
func (s *LedgerService) Delete(ctx context.Context, owner, id int64) error {
	deleted, err := s.store.DeleteTransaction(ctx, owner, id)
	if err != nil {
		return err
	}

	s.undo.Capture(owner, deleted, deleted.Position, time.Now())
	s.totals.Invalidate(owner)
	s.publishEvent(ctx, applog.OpDelete, owner, id)
	return nil
}

// Undo restores the owner's last deleted transaction at its original
// position, keeping its original timestamp.
func (s *LedgerService) Undo(ctx context.Context, owner int64) (core.Transaction, error) {
	snap, err := s.undo.TryConsume(owner, time.Now())
	if err != nil {
		return core.Transaction{}, err
	}

	restored, err := s.store.RestoreTransactionAt(ctx, owner, snap.Payload, snap.Position)
	if err != nil {
		// The store rolled back; put the snapshot back (keeping its
		// original deletion time) so a retry within the window works.
		s.undo.Capture(owner, snap.Payload, snap.Position, snap.DeletedAt)
		return core.Transaction{}, fmt.Errorf("restore transaction: %w", err)
	}

	s.totals.Invalidate(owner)
	s.publishEvent(ctx, applog.OpUndo, owner, restored.ID)
	return restored, nil
}

// List returns the owner's ledger ordered by (position, id).
func (s *LedgerService) List(ctx context.Context, owner int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, owner)
}

// Totals returns the owner's income/expense totals, served from the cache
// within its TTL and recomputed from the store otherwise. Full precision is
// kept; rounding happens at the presentation boundary.
func (s *LedgerService) Totals(ctx context.Context, owner int64) (TotalsSummary, error) {
	totals, err := s.totals.Get(ctx, owner, time.Now(), func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
		return s.store.SumTransactionAmounts(ctx, owner)
	})
	if err != nil {
		return TotalsSummary{}, fmt.Errorf("compute totals: %w", err)
	}

	return TotalsSummary{
		Income:  totals.Income,
		Expense: totals.Expense,
		Balance: totals.Income.Sub(totals.Expense),
	}, nil
}

func validateTransactionInput(description, amountStr, typeStr string) (core.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return core.Transaction{}, core.NewValidationError("description is required")
	}

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return core.Transaction{}, err
	}

	typ, err := core.ParseTransactionType(typeStr)
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{Description: description, Amount: amount, Type: typ}, nil
}

func (s *LedgerService) publishEvent(ctx context.Context, op string, owner, itemID int64) {
	if s.events == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(op, owner, string(core.KindTransaction), itemID)
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err, "operation", op, "user_id", owner, "item_id", itemID)
	}
}
