package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backfill runs one delayed follow-up per order. Provisions that return
// without an IP schedule a single check here; scheduling again for the
// same order replaces the earlier timer, and Cancel drops a pending one
// (e.g. when the order fails or is deleted before the check fires).
type Backfill struct {
	logger *zap.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
	closed bool
}

func NewBackfill(logger *zap.Logger) *Backfill {
	return &Backfill{
		logger: logger.Named("scheduler.backfill"),
		timers: make(map[int64]*time.Timer),
	}
}

// Schedule arranges for fn to run once after delay. fn receives a fresh
// background context: the scheduling request's lifetime must not cancel
// the follow-up.
func (b *Backfill) Schedule(orderID int64, delay time.Duration, fn func(ctx context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if existing, ok := b.timers[orderID]; ok {
		existing.Stop()
	}

	b.timers[orderID] = time.AfterFunc(delay, func() {
		b.mu.Lock()
		delete(b.timers, orderID)
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return
		}

		b.logger.Debug("running scheduled follow-up", zap.Int64("order_id", orderID))
		fn(context.Background())
	})
}

// Cancel drops a pending follow-up. Cancelling an unknown order is a no-op.
func (b *Backfill) Cancel(orderID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if timer, ok := b.timers[orderID]; ok {
		timer.Stop()
		delete(b.timers, orderID)
	}
}

// Pending reports how many follow-ups are waiting to fire.
func (b *Backfill) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

// Shutdown stops every pending timer and rejects new scheduling. Timers
// already firing see the closed flag and return without running fn.
func (b *Backfill) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}
