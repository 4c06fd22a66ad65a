package matching

import (
	"testing"

	"github.com/jaredmoss/exchange-core/internal/types"
)

func mkOrder(id uint64, side types.Side, price float64, qty int64) *types.Order {
	return &types.Order{
		OrderID:  id,
		UserID:   1,
		Symbol:   "AAPL",
		Side:     side,
		Price:    types.TruncatePrice(price),
		Quantity: qty,
		Status:   types.Pending,
	}
}

func TestBestBidIsHighestPrice(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Buy, 100.00, 10))
	book.Insert(mkOrder(2, types.Buy, 101.00, 5))
	book.Insert(mkOrder(3, types.Buy, 99.50, 5))

	best := book.BestBid()
	if best == nil || best.Price != 101.00 {
		t.Fatalf("expected best bid 101.00, got %+v", best)
	}
}

func TestBestAskIsLowestPrice(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Sell, 100.00, 10))
	book.Insert(mkOrder(2, types.Sell, 99.00, 5))
	book.Insert(mkOrder(3, types.Sell, 101.50, 5))

	best := book.BestAsk()
	if best == nil || best.Price != 99.00 {
		t.Fatalf("expected best ask 99.00, got %+v", best)
	}
}

func TestTiePriceBreaksByOrderID(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(5, types.Buy, 100.00, 10))
	book.Insert(mkOrder(2, types.Buy, 100.00, 10))
	book.Insert(mkOrder(8, types.Buy, 100.00, 10))

	best := book.BestBid()
	if best.OrderID != 2 {
		t.Fatalf("expected earliest order_id (2) to win the tie, got %d", best.OrderID)
	}
}

func TestCancelRemovesRestingOrder(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Buy, 100.00, 10))

	removed, ok := book.Cancel(1)
	if !ok || removed.OrderID != 1 {
		t.Fatalf("expected to cancel order 1, got ok=%v removed=%+v", ok, removed)
	}
	if book.BestBid() != nil {
		t.Fatalf("expected empty book after cancel")
	}
}

func TestCancelMissingOrderFails(t *testing.T) {
	book := NewOrderBook()
	if _, ok := book.Cancel(999); ok {
		t.Fatalf("expected cancel of unknown order to fail")
	}
}

func TestDepthReportsCounts(t *testing.T) {
	book := NewOrderBook()
	book.Insert(mkOrder(1, types.Buy, 100.00, 10))
	book.Insert(mkOrder(2, types.Sell, 101.00, 10))
	book.Insert(mkOrder(3, types.Sell, 102.00, 10))

	bids, asks := book.Depth()
	if bids != 1 || asks != 2 {
		t.Fatalf("expected depth (1, 2), got (%d, %d)", bids, asks)
	}
}
