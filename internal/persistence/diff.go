// Package persistence implements the write-back buffered persistence
// pipeline (spec.md §4.5) and the abstract persistence port (§4.6)
// that the buffer drain and user cache invoke against the store.
package persistence

import (
	"time"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// diffShape distinguishes an OrderDiff that still needs a full INSERT
// from one that only carries an UPDATE's changed fields (spec.md §3).
type diffShape int

const (
	shapeInsert diffShape = iota
	shapeUpdate
)

// OrderDiff is a lazily-accumulated record of changes to a persisted
// order (spec.md §3 GLOSSARY "Diff"). Insert shape carries every
// field; update shape carries only what changed, with order_id
// supplied by the OrderBuffer's map key.
type OrderDiff struct {
	shape diffShape

	OrderID     uint64
	Side        types.Side
	Symbol      string
	Quantity    int64
	Filled      int64
	Price       float64
	UserID      uint64
	Status      types.Status
	TimePlaced  time.Time
	TimeUpdated time.Time

	hasStatus bool
	hasFilled bool
}

// IsInsert reports whether d still needs a full INSERT at drain time.
func (d OrderDiff) IsInsert() bool { return d.shape == shapeInsert }

// HasStatus reports whether the diff carries a status change, so a
// Store implementation applying an update-shape diff knows whether to
// include status in its UPDATE statement.
func (d OrderDiff) HasStatus() bool { return d.hasStatus }

// HasFilled reports whether the diff carries a filled-quantity
// change.
func (d OrderDiff) HasFilled() bool { return d.hasFilled }

// newInsertDiff builds a fully-populated insert-shape diff from a
// freshly-submitted order.
func newInsertDiff(o *types.Order) OrderDiff {
	return OrderDiff{
		shape:       shapeInsert,
		OrderID:     o.OrderID,
		Side:        o.Side,
		Symbol:      o.Symbol,
		Quantity:    o.Quantity,
		Filled:      o.Filled,
		Price:       o.Price,
		UserID:      o.UserID,
		Status:      o.Status,
		TimePlaced:  o.TimePlaced,
		TimeUpdated: o.TimePlaced,
		hasStatus:   true,
		hasFilled:   true,
	}
}

// applyUpdate merges an update into d per spec.md §4.5's rule: a
// terminal status (COMPLETE/CANCELLED) overwrites the stored status;
// PENDING is a no-op on the status field. If updateFilled, filled is
// overwritten. time_updated is always refreshed. This is what
// preserves "insert followed by update(s) within one drain window
// stays an insert with the final filled/status".
func (d *OrderDiff) applyUpdate(status types.Status, filled int64, updateFilled bool, now time.Time) {
	if status == types.Complete || status == types.Cancelled {
		d.Status = status
		d.hasStatus = true
	}
	if updateFilled {
		d.Filled = filled
		d.hasFilled = true
	}
	d.TimeUpdated = now
}
