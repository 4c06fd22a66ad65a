// Package matching implements the per-symbol order book: a pair of
// priority queues (max-heap bids, min-heap asks) and the routine that
// matches an incoming order against the resting side.
//
// Every resting entry satisfies Filled < Quantity and Status ==
// Pending (spec.md §3 invariant #2); nothing in this package ever
// touches accounts or persistence.
package matching

import (
	"container/heap"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// OrderBook holds the resting orders for a single symbol.
type OrderBook struct {
	bids bidHeap
	asks askHeap
}

// NewOrderBook returns an empty book.
func NewOrderBook() *OrderBook {
	ob := &OrderBook{}
	heap.Init(&ob.bids)
	heap.Init(&ob.asks)
	return ob
}

// BestBid returns the top of the bid heap, or nil if empty.
func (ob *OrderBook) BestBid() *types.Order {
	if len(ob.bids) == 0 {
		return nil
	}
	return ob.bids[0]
}

// BestAsk returns the top of the ask heap, or nil if empty.
func (ob *OrderBook) BestAsk() *types.Order {
	if len(ob.asks) == 0 {
		return nil
	}
	return ob.asks[0]
}

// Insert places a resting order on the appropriate side. Callers must
// only insert orders with residual quantity and Status == Pending.
func (ob *OrderBook) Insert(o *types.Order) {
	switch o.Side {
	case types.Buy:
		heap.Push(&ob.bids, o)
	case types.Sell:
		heap.Push(&ob.asks, o)
	}
}

// PopBestBid removes and returns the top of the bid heap.
func (ob *OrderBook) PopBestBid() *types.Order {
	if len(ob.bids) == 0 {
		return nil
	}
	return heap.Pop(&ob.bids).(*types.Order)
}

// PopBestAsk removes and returns the top of the ask heap.
func (ob *OrderBook) PopBestAsk() *types.Order {
	if len(ob.asks) == 0 {
		return nil
	}
	return heap.Pop(&ob.asks).(*types.Order)
}

// Cancel removes a resting order by ID from either side. A linear
// scan is acceptable given expected book depth (spec.md §4.1); an
// alternative is lazy tombstoning checked at peek.
func (ob *OrderBook) Cancel(orderID uint64) (*types.Order, bool) {
	if o, idx, ok := findIndex(ob.bids, orderID); ok {
		heap.Remove(&ob.bids, idx)
		return o, true
	}
	if o, idx, ok := findIndex(ob.asks, orderID); ok {
		heap.Remove(&ob.asks, idx)
		return o, true
	}
	return nil, false
}

func findIndex[H ~[]*types.Order](h H, orderID uint64) (*types.Order, int, bool) {
	for i, o := range h {
		if o.OrderID == orderID {
			return o, i, true
		}
	}
	return nil, 0, false
}

// Depth reports the number of resting bids and asks.
func (ob *OrderBook) Depth() (bids, asks int) {
	return len(ob.bids), len(ob.asks)
}

// SnapshotBids returns the resting bids, best price first, without
// mutating the book. Used only for the show-market read path; the
// returned orders must not be mutated by the caller.
func (ob *OrderBook) SnapshotBids() []*types.Order {
	cp := make(bidHeap, len(ob.bids))
	copy(cp, ob.bids)
	out := make([]*types.Order, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(*types.Order))
	}
	return out
}

// SnapshotAsks returns the resting asks, best price first.
func (ob *OrderBook) SnapshotAsks() []*types.Order {
	cp := make(askHeap, len(ob.asks))
	copy(cp, ob.asks)
	out := make([]*types.Order, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(*types.Order))
	}
	return out
}
