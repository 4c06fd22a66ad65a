package exchange

import (
	"testing"

	"github.com/jaredmoss/exchange-core/internal/types"
)

// S1: single uncrossed order produces no trades, rests on the book,
// and updates only the total_buys counter.
func TestSubmitSingleUncrossedOrder(t *testing.T) {
	ex := New(0)
	order := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)

	touched, trades := ex.Submit(order)

	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if order.OrderID != 1 {
		t.Fatalf("expected order_id 1, got %d", order.OrderID)
	}
	if order.Status != types.Pending {
		t.Fatalf("expected order to remain pending, got %s", order.Status)
	}
	if len(touched) != 1 || touched[0] != order {
		t.Fatalf("expected the incoming order to be reported as resting")
	}

	snap, err := ex.ShowMarket("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Stats.TotalBuys != 1 || snap.Stats.FilledBuys != 0 {
		t.Fatalf("expected stats {total_buys=1, filled_buys=0}, got %+v", snap.Stats)
	}
	if snap.Stats.LastPrice != nil {
		t.Fatalf("expected no last price yet")
	}
	if len(snap.Bids) != 1 {
		t.Fatalf("expected one resting bid")
	}
}

// S2: an exact cross produces one trade, completes both orders, and
// updates last_price plus both filled_* counters.
func TestSubmitExactCross(t *testing.T) {
	ex := New(0)
	buy := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	ex.Submit(buy)

	sell := types.NewOrder(2, "AAPL", types.Sell, 10, 99.50)
	touched, trades := ex.Submit(sell)

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	trade := trades[0]
	if trade.Price != 100.00 || trade.Exchanged != 10 {
		t.Fatalf("expected trade {price=100.00, exchanged=10}, got %+v", trade)
	}
	if trade.FilledOrderID != 1 || trade.FillerOrderID != 2 {
		t.Fatalf("expected filled_oid=1 filler_oid=2, got %+v", trade)
	}
	if buy.Status != types.Complete || sell.Status != types.Complete {
		t.Fatalf("expected both orders complete, got buy=%s sell=%s", buy.Status, sell.Status)
	}
	if len(touched) != 1 {
		t.Fatalf("expected only the completed resting buy in touched (sell never rests), got %d", len(touched))
	}

	snap, err := ex.ShowMarket("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Stats.FilledBuys != 1 || snap.Stats.FilledSells != 1 {
		t.Fatalf("expected filled_buys=1 filled_sells=1, got %+v", snap.Stats)
	}
	if snap.Stats.LastPrice == nil || *snap.Stats.LastPrice != 100.00 {
		t.Fatalf("expected last_price 100.00, got %+v", snap.Stats.LastPrice)
	}
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Fatalf("expected empty book after exact cross")
	}
}

// S3: a partial fill leaves the residual aggressor resting while the
// resting order it consumed completes; filled_sells counts the trade,
// not the aggressor's own completion.
func TestSubmitPartialFillRestsResidual(t *testing.T) {
	ex := New(0)
	ex.Submit(types.NewOrder(1, "AAPL", types.Buy, 5, 100.00))

	sell := types.NewOrder(2, "AAPL", types.Sell, 8, 99.00)
	_, trades := ex.Submit(sell)

	if len(trades) != 1 || trades[0].Exchanged != 5 {
		t.Fatalf("expected single trade of 5, got %+v", trades)
	}
	if sell.Status != types.Pending || sell.Residual() != 3 {
		t.Fatalf("expected sell to rest with residual 3, got status=%s residual=%d", sell.Status, sell.Residual())
	}

	snap, err := ex.ShowMarket("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Stats.FilledSells != 1 {
		t.Fatalf("expected filled_sells=1, got %d", snap.Stats.FilledSells)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].OrderID != 2 {
		t.Fatalf("expected the residual sell resting on the ask side")
	}
}

func TestOrderIDsAreMonotonic(t *testing.T) {
	ex := New(0)
	a := types.NewOrder(1, "AAPL", types.Buy, 1, 10.00)
	b := types.NewOrder(1, "AAPL", types.Buy, 1, 10.00)
	c := types.NewOrder(1, "AAPL", types.Buy, 1, 10.00)

	ex.Submit(a)
	ex.Submit(b)
	ex.Submit(c)

	if !(a.OrderID < b.OrderID && b.OrderID < c.OrderID) {
		t.Fatalf("expected strictly increasing order ids, got %d %d %d", a.OrderID, b.OrderID, c.OrderID)
	}
}

func TestSeedTotalOrdersContinuesCounter(t *testing.T) {
	ex := New(41)
	order := types.NewOrder(1, "AAPL", types.Buy, 1, 10.00)
	ex.Submit(order)
	if order.OrderID != 42 {
		t.Fatalf("expected order_id 42 continuing from seed 41, got %d", order.OrderID)
	}
}

func TestGetPriceNoMarket(t *testing.T) {
	ex := New(0)
	if _, err := ex.GetPrice("AAPL"); err != ErrNoMarket {
		t.Fatalf("expected ErrNoMarket, got %v", err)
	}
}

func TestGetPriceNoTrades(t *testing.T) {
	ex := New(0)
	ex.Submit(types.NewOrder(1, "AAPL", types.Buy, 10, 100.00))
	if _, err := ex.GetPrice("AAPL"); err != ErrNoTrades {
		t.Fatalf("expected ErrNoTrades, got %v", err)
	}
}

func TestCancelRemovesRestingOrder(t *testing.T) {
	ex := New(0)
	order := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	ex.Submit(order)

	cancelled, ok := ex.Cancel("AAPL", order.OrderID)
	if !ok {
		t.Fatalf("expected cancel to succeed")
	}
	if cancelled.Status != types.Cancelled {
		t.Fatalf("expected status CANCELLED, got %s", cancelled.Status)
	}

	snap, _ := ex.ShowMarket("AAPL")
	if len(snap.Bids) != 0 {
		t.Fatalf("expected book empty after cancel")
	}
}

func TestCancelUnknownSymbolFails(t *testing.T) {
	ex := New(0)
	if _, ok := ex.Cancel("AAPL", 1); ok {
		t.Fatalf("expected cancel on unknown symbol to fail")
	}
}

func TestMarketHistoryAccumulates(t *testing.T) {
	ex := New(0)
	ex.Submit(types.NewOrder(1, "AAPL", types.Buy, 10, 100.00))
	ex.Submit(types.NewOrder(2, "AAPL", types.Sell, 10, 99.00))

	history := ex.MarketHistory("AAPL")
	if len(history) != 1 {
		t.Fatalf("expected 1 trade in history, got %d", len(history))
	}
}

func TestClearModifiedStatsResetsFlag(t *testing.T) {
	ex := New(0)
	ex.Submit(types.NewOrder(1, "AAPL", types.Buy, 10, 100.00))

	before := ex.MarketStatsSnapshot()
	if len(before) != 1 || !before[0].Modified {
		t.Fatalf("expected AAPL stats marked modified before clearing")
	}

	ex.ClearModifiedStats()

	after := ex.MarketStatsSnapshot()
	if len(after) != 0 {
		t.Fatalf("expected no modified stats after clearing, got %d", len(after))
	}
}

// SeedBook/SeedStats rehydrate a fresh registry from persisted state
// without going through Submit's matching path.
func TestSeedBookAndSeedStatsRehydrateRegistry(t *testing.T) {
	ex := New(42)

	price := 101.50
	ex.SeedStats("AAPL", 5, 3, 2, 1, &price)

	resting := types.NewOrder(1, "AAPL", types.Sell, 10, 102.00)
	resting.OrderID = 7
	ex.SeedBook("AAPL", resting)

	if got := ex.TotalOrders(); got != 42 {
		t.Fatalf("expected seeded counter 42, got %d", got)
	}

	snap, err := ex.ShowMarket("AAPL")
	if err != nil {
		t.Fatalf("ShowMarket: %v", err)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].OrderID != 7 {
		t.Fatalf("expected the seeded order resting on the book, got %+v", snap.Asks)
	}
	if snap.Stats.TotalBuys != 5 || snap.Stats.FilledSells != 1 {
		t.Fatalf("expected seeded counters to carry over, got %+v", snap.Stats)
	}

	got, err := ex.GetPrice("AAPL")
	if err != nil || got != price {
		t.Fatalf("expected seeded last price %v, got %v (err=%v)", price, got, err)
	}

	// A seeded order is matchable by a crossing incoming order, exactly
	// as if it had rested there from a prior process's Submit call.
	_, trades := ex.Submit(types.NewOrder(0, "AAPL", types.Buy, 10, 102.00))
	if len(trades) != 1 {
		t.Fatalf("expected the incoming order to match the seeded resting order, got %d trades", len(trades))
	}
}
