package types

import "time"

// Trade is produced as a side effect of submitting a new order. The
// resting order supplies Side and Price (price-time priority: price
// improvement accrues to the resting side, per spec). Immutable once
// created.
type Trade struct {
	Symbol        string
	Side          Side // side of the resting order that was filled
	Price         float64
	FilledOrderID uint64
	FilledUserID  uint64
	FillerOrderID uint64
	FillerUserID  uint64
	Exchanged     int64
	ExecutionTime time.Time
}

// NewTrade builds a Trade from the resting order being filled and the
// aggressor order that filled it.
func NewTrade(resting, filler *Order, exchanged int64) Trade {
	return Trade{
		Symbol:        resting.Symbol,
		Side:          resting.Side,
		Price:         resting.Price,
		FilledOrderID: resting.OrderID,
		FilledUserID:  resting.UserID,
		FillerOrderID: filler.OrderID,
		FillerUserID:  filler.UserID,
		Exchanged:     exchanged,
		ExecutionTime: time.Now(),
	}
}
