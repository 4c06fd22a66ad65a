package persistence

import (
	"time"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// State is the tri-state buffer fill indicator from spec.md §3.
type State int

const (
	Empty State = iota
	Nonempty
	Full
)

// FullWatermark is the fill-ratio threshold above which a buffer is
// FULL (spec.md §4.5 "Buffer state rule", config.BuffersConfig.DrainWatermark).
// cmd/exchange overrides this from configuration at startup.
var FullWatermark = 0.9

// OrderBuffer accumulates OrderDiffs keyed by order_id, bounded at
// capacity. record_insert/record_update implement spec.md §4.5.
type OrderBuffer struct {
	capacity int
	diffs    map[uint64]*OrderDiff
}

// NewOrderBuffer returns an empty buffer bounded at capacity (O in
// spec.md §3).
func NewOrderBuffer(capacity int) *OrderBuffer {
	return &OrderBuffer{capacity: capacity, diffs: make(map[uint64]*OrderDiff)}
}

// RecordInsert stores a fully-populated insert-shape diff for a
// newly-created order. Duplicate insert of the same order_id is a
// fatal invariant violation (spec.md §7 Invariant/Violation).
func (b *OrderBuffer) RecordInsert(o *types.Order) {
	if _, exists := b.diffs[o.OrderID]; exists {
		panic("persistence: duplicate insert into order buffer for order_id")
	}
	d := newInsertDiff(o)
	b.diffs[o.OrderID] = &d
}

// RecordUpdate merges a status/filled change into the diff for
// order_id, creating an empty update-shape diff if none exists yet.
func (b *OrderBuffer) RecordUpdate(orderID uint64, status types.Status, filled int64, updateFilled bool) {
	d, ok := b.diffs[orderID]
	if !ok {
		d = &OrderDiff{shape: shapeUpdate, OrderID: orderID}
		b.diffs[orderID] = d
	}
	d.applyUpdate(status, filled, updateFilled, time.Now())
}

// Len returns the number of buffered diffs.
func (b *OrderBuffer) Len() int { return len(b.diffs) }

// State reports the buffer's tri-state fill level.
func (b *OrderBuffer) State() State {
	return fillState(len(b.diffs), b.capacity)
}

// Drain partitions every buffered diff per spec.md §4.5's drain
// categorisation and empties the buffer. Returns the four batches in
// the order the caller must apply them (insert-orders must still be
// applied before the other three, per §4.5 step 1 vs step 2).
func (b *OrderBuffer) Drain() (inserts, updates []OrderDiff, insertPending, deletePending []uint64) {
	for orderID, d := range b.diffs {
		if d.IsInsert() {
			inserts = append(inserts, *d)
			if d.Status == types.Pending {
				insertPending = append(insertPending, orderID)
			} else if d.Status == types.Complete || d.Status == types.Cancelled {
				deletePending = append(deletePending, orderID)
			}
			continue
		}
		updates = append(updates, *d)
		if d.Status == types.Complete || d.Status == types.Cancelled {
			deletePending = append(deletePending, orderID)
		}
	}
	b.diffs = make(map[uint64]*OrderDiff)
	return inserts, updates, insertPending, deletePending
}

// TradeBuffer is an append-only, bounded sequence of trades (spec.md
// §3).
type TradeBuffer struct {
	capacity int
	trades   []types.Trade
}

// NewTradeBuffer returns an empty buffer bounded at capacity (T in
// spec.md §3).
func NewTradeBuffer(capacity int) *TradeBuffer {
	return &TradeBuffer{capacity: capacity}
}

// Append adds trades to the buffer.
func (b *TradeBuffer) Append(trades ...types.Trade) {
	b.trades = append(b.trades, trades...)
}

// Len returns the number of buffered trades.
func (b *TradeBuffer) Len() int { return len(b.trades) }

// State reports the buffer's tri-state fill level.
func (b *TradeBuffer) State() State {
	return fillState(len(b.trades), b.capacity)
}

// Drain returns and empties the buffered trades.
func (b *TradeBuffer) Drain() []types.Trade {
	out := b.trades
	b.trades = nil
	return out
}

func fillState(n, capacity int) State {
	if n == 0 {
		return Empty
	}
	if capacity > 0 && float64(n)/float64(capacity) > FullWatermark {
		return Full
	}
	return Nonempty
}
