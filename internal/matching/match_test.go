package matching

import (
	"testing"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// S1: a single order with nothing resting on the other side produces
// no trades and rests on its own side.
func TestMatchNoCrossRests(t *testing.T) {
	book := NewOrderBook()
	incoming := mkOrder(1, types.Buy, 100.00, 10)

	resting, trades := MatchIncoming(book, incoming)
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if len(resting) != 0 {
		t.Fatalf("expected no resting touched, got %d", len(resting))
	}
	book.Insert(incoming)
	if book.BestBid() != incoming {
		t.Fatalf("expected incoming order to rest on the book")
	}
}

// S2: an incoming order that exactly matches a resting order on price
// and quantity produces one trade and fully fills both sides.
func TestMatchExactCross(t *testing.T) {
	book := NewOrderBook()
	resting := mkOrder(1, types.Sell, 100.00, 10)
	book.Insert(resting)

	incoming := mkOrder(2, types.Buy, 100.00, 10)
	touched, trades := MatchIncoming(book, incoming)

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	trade := trades[0]
	if trade.Exchanged != 10 {
		t.Fatalf("expected exchanged 10, got %d", trade.Exchanged)
	}
	if trade.Price != 100.00 {
		t.Fatalf("expected trade at resting (maker) price 100.00, got %v", trade.Price)
	}
	if incoming.Residual() != 0 {
		t.Fatalf("expected incoming fully filled, got residual %d", incoming.Residual())
	}
	if len(touched) != 1 || touched[0].Status != types.Complete {
		t.Fatalf("expected resting order marked complete, got %+v", touched)
	}
	if book.BestAsk() != nil {
		t.Fatalf("expected ask book empty after exact cross")
	}
}

// S3: an incoming order larger than the best resting order fully
// fills the resting order, pops it, and keeps residual quantity on
// the incoming order for the caller to rest.
func TestMatchPartialFillConsumesRestingThenStops(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Sell, 100.00, 5))

	incoming := mkOrder(2, types.Buy, 100.00, 10)
	touched, trades := MatchIncoming(book, incoming)

	if len(trades) != 1 || trades[0].Exchanged != 5 {
		t.Fatalf("expected a single trade for 5 units, got %+v", trades)
	}
	if incoming.Residual() != 5 {
		t.Fatalf("expected incoming aggressor residual 5, got %d", incoming.Residual())
	}
	if touched[0].Status != types.Complete {
		t.Fatalf("expected consumed resting order marked complete")
	}
	if book.BestAsk() != nil {
		t.Fatalf("expected ask side drained")
	}
}

// The incoming order that is larger than the resting book continues
// matching resting orders, at each one's own price, until the book is
// exhausted or its price no longer crosses.
func TestMatchWalksMultipleLevels(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Sell, 99.00, 5))
	book.Insert(mkOrder(2, types.Sell, 100.00, 5))
	book.Insert(mkOrder(3, types.Sell, 105.00, 5)) // won't cross

	incoming := mkOrder(4, types.Buy, 100.00, 20)
	_, trades := MatchIncoming(book, incoming)

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price != 99.00 || trades[1].Price != 100.00 {
		t.Fatalf("expected trades at ascending resting prices, got %+v", trades)
	}
	if incoming.Residual() != 10 {
		t.Fatalf("expected incoming residual 10 after consuming 10 units, got %d", incoming.Residual())
	}
	if book.BestAsk() == nil || book.BestAsk().Price != 105.00 {
		t.Fatalf("expected only the non-crossing order left resting")
	}
}

// When the resting order is larger than the incoming order, the
// incoming order is filled completely and the loop stops, leaving the
// resting order partially filled and still on the book.
func TestIncomingResidualZeroStopsLoop(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Sell, 100.00, 50))

	incoming := mkOrder(2, types.Buy, 100.00, 10)
	touched, trades := MatchIncoming(book, incoming)

	if len(trades) != 1 || trades[0].Exchanged != 10 {
		t.Fatalf("expected single trade of 10, got %+v", trades)
	}
	if incoming.Residual() != 0 {
		t.Fatalf("expected incoming fully filled, got %d", incoming.Residual())
	}
	if touched[0].Status != types.Pending {
		t.Fatalf("expected partially filled resting order to remain pending")
	}
	if touched[0].Residual() != 40 {
		t.Fatalf("expected resting order residual 40, got %d", touched[0].Residual())
	}
	if book.BestAsk() == nil || book.BestAsk().OrderID != 1 {
		t.Fatalf("expected partially filled resting order to remain on book")
	}
}
