package persistence

import (
	"context"
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"golang.org/x/sync/errgroup"
)

// BufferCollection owns the order and trade buffers together with
// the drain routine that enforces spec.md §4.5's foreign-key-safe
// ordering against a Store.
type BufferCollection struct {
	Orders *OrderBuffer
	Trades *TradeBuffer
	store  Store
	ex     *exchange.Exchange
}

// NewBufferCollection wires the two buffers to the store they drain
// into and the exchange registry they read modified market stats
// and the order counter from.
func NewBufferCollection(orderCapacity, tradeCapacity int, store Store, ex *exchange.Exchange) *BufferCollection {
	return &BufferCollection{
		Orders: NewOrderBuffer(orderCapacity),
		Trades: NewTradeBuffer(tradeCapacity),
		store:  store,
		ex:     ex,
	}
}

// drain performs the five-step FK-safe sequence from spec.md §4.5.
// Step 2's three independent batches run concurrently via errgroup;
// steps 1, 3, 4, 5 are strictly sequential relative to it.
func (bc *BufferCollection) drain(ctx context.Context) error {
	inserts, updates, insertPending, deletePending := bc.Orders.Drain()

	if len(inserts) > 0 {
		if err := bc.store.BatchInsertOrders(ctx, inserts); err != nil {
			return fmt.Errorf("persistence: drain step 1 (insert-orders): %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(updates) > 0 {
		g.Go(func() error {
			if err := bc.store.BatchUpdateOrders(gctx, updates); err != nil {
				return fmt.Errorf("update-orders: %w", err)
			}
			return nil
		})
	}
	if len(insertPending) > 0 {
		g.Go(func() error {
			if err := bc.store.BatchInsertPending(gctx, insertPending); err != nil {
				return fmt.Errorf("insert-pending: %w", err)
			}
			return nil
		})
	}
	if len(deletePending) > 0 {
		g.Go(func() error {
			if err := bc.store.BatchDeletePending(gctx, deletePending); err != nil {
				return fmt.Errorf("delete-pending: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("persistence: drain step 2: %w", err)
	}

	if err := bc.store.UpsertExchangeCounter(ctx, bc.ex.TotalOrders()); err != nil {
		return fmt.Errorf("persistence: drain step 3 (exchange counter): %w", err)
	}

	if stats := bc.ex.MarketStatsSnapshot(); len(stats) > 0 {
		if err := bc.store.BatchUpdateMarkets(ctx, stats); err != nil {
			return fmt.Errorf("persistence: drain step 4 (market stats): %w", err)
		}
		bc.ex.ClearModifiedStats()
	}

	trades := bc.Trades.Drain()
	if len(trades) > 0 {
		if err := bc.store.BatchInsertTrades(ctx, trades); err != nil {
			return fmt.Errorf("persistence: drain step 5 (trades): %w", err)
		}
	}

	logger.Info("persistence.drain complete", map[string]interface{}{
		"inserts": len(inserts), "updates": len(updates), "trades": len(trades),
	})
	return nil
}

// UpdateBufferStates is the post-step check run after every order
// submission and cancellation (spec.md §4.5 "Buffer state rule"). It
// drains the order buffer when either buffer has gone FULL — a FULL
// trade buffer forces an order-buffer drain first, for the same
// foreign-key reason a standalone trade drain would violate. Returns
// whether the order buffer was drained; the caller must reset every
// account's and stat's modified flag when true (spec.md §8 invariant
// 4).
func (bc *BufferCollection) UpdateBufferStates(ctx context.Context) (drained bool, err error) {
	if bc.Orders.State() == Full || bc.Trades.State() == Full {
		if err := bc.drain(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ForceFlush drains both buffers unconditionally, regardless of
// state. Triggered by a cache-eviction failure (spec.md §4.4) or on
// shutdown.
func (bc *BufferCollection) ForceFlush(ctx context.Context) error {
	return bc.drain(ctx)
}
