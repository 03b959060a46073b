// Package cache holds the per-user income/expense totals cache. Entries are
// trusted for a fixed TTL and reset to a "never computed" sentinel on every
// ledger mutation, so the next read recomputes from the store instead of
// waiting out the TTL. Staleness is checked lazily; nothing sweeps in the
// background.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// TotalsTTL is how long a computed totals entry is trusted.
const TotalsTTL = 30 * time.Second

// Totals is the cached aggregate pair. Balance is derived by callers as
// income minus expense and is never cached separately.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// RecomputeFunc produces fresh totals from the store. It must be a pure
// aggregation with no side effects.
type RecomputeFunc func(ctx context.Context) (income, expense decimal.Decimal, err error)

type totalsEntry struct {
	income     decimal.Decimal
	expense    decimal.Decimal
	computedAt time.Time // zero means never computed
	gen        uint64    // bumped by Invalidate to fence in-flight recomputes
}

// TotalsCache is process-wide, keyed by owner, and lives for the process
// lifetime. It is cleared only by explicit Invalidate calls.
type TotalsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]totalsEntry
}

// NewTotalsCache creates a totals cache with the given TTL.
func NewTotalsCache(ttl time.Duration) *TotalsCache {
	return &TotalsCache{
		ttl:     ttl,
		entries: make(map[int64]totalsEntry),
	}
}

// Get returns the owner's totals, recomputing when the entry is missing,
// invalidated, or older than the TTL. The recompute runs outside the lock so
// cache access never blocks on store I/O; the generation check below keeps a
// recompute that raced an Invalidate from being cached.
func (c *TotalsCache) Get(ctx context.Context, owner int64, now time.Time, recompute RecomputeFunc) (Totals, error) {
	c.mu.Lock()
	entry, ok := c.entries[owner]
	if !ok {
		// Lazy zero entry; the zero computedAt forces a recompute below.
		entry = totalsEntry{income: decimal.Zero, expense: decimal.Zero}
		c.entries[owner] = entry
	}
	fresh := !entry.computedAt.IsZero() && now.Sub(entry.computedAt) <= c.ttl
	gen := entry.gen
	c.mu.Unlock()

	if fresh {
		return Totals{Income: entry.income, Expense: entry.expense}, nil
	}

	income, expense, err := recompute(ctx)
	if err != nil {
		return Totals{}, err
	}

	c.mu.Lock()
	// An Invalidate that landed while the recompute was in flight bumped
	// the generation; the result then predates the mutation and must not
	// be cached, or pre-mutation totals would be served for a full TTL.
	if c.entries[owner].gen == gen {
		c.entries[owner] = totalsEntry{income: income, expense: expense, computedAt: now, gen: gen}
	}
	c.mu.Unlock()

	return Totals{Income: income, Expense: expense}, nil
}

// Invalidate resets the owner's entry to the never-computed state. Callers
// must invoke it synchronously after every successful ledger mutation, once
// the store commit has succeeded.
func (c *TotalsCache) Invalidate(owner int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[owner] = totalsEntry{
		income:  decimal.Zero,
		expense: decimal.Zero,
		gen:     c.entries[owner].gen + 1,
	}
}

// Size returns the number of tracked owners.
func (c *TotalsCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
