package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// recordingStore is a minimal Store fake that records call order and
// can be told to fail a particular step, for testing drain ordering.
type recordingStore struct {
	calls   []string
	failOn  string
	failErr error
}

func (s *recordingStore) record(name string) error {
	s.calls = append(s.calls, name)
	if s.failOn == name {
		return s.failErr
	}
	return nil
}

func (s *recordingStore) LoadAllOpenBooks(ctx context.Context) (map[string][]*types.Order, error) {
	return nil, nil
}
func (s *recordingStore) LoadMarketStats(ctx context.Context) ([]MarketSeed, error) { return nil, nil }
func (s *recordingStore) LoadExchangeCounter(ctx context.Context) (uint64, error)   { return 0, nil }
func (s *recordingStore) AccountExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}
func (s *recordingStore) CountAccounts(ctx context.Context) (uint64, error) { return 0, nil }
func (s *recordingStore) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	return 0, "", false, nil
}
func (s *recordingStore) LoadAccount(ctx context.Context, username string) (*account.Account, error) {
	return nil, nil
}
func (s *recordingStore) LoadUsername(ctx context.Context, userID uint64) (string, error) {
	return "", nil
}
func (s *recordingStore) LoadOpenOrders(ctx context.Context, userID uint64) (map[string]map[uint64]*types.Order, error) {
	return nil, nil
}
func (s *recordingStore) LoadUserTrades(ctx context.Context, userID uint64) ([]types.Trade, error) {
	return nil, nil
}
func (s *recordingStore) InsertAccount(ctx context.Context, a *account.Account) error { return nil }

func (s *recordingStore) BatchInsertOrders(ctx context.Context, diffs []OrderDiff) error {
	return s.record("insert-orders")
}
func (s *recordingStore) BatchUpdateOrders(ctx context.Context, diffs []OrderDiff) error {
	return s.record("update-orders")
}
func (s *recordingStore) BatchInsertPending(ctx context.Context, orderIDs []uint64) error {
	return s.record("insert-pending")
}
func (s *recordingStore) BatchDeletePending(ctx context.Context, orderIDs []uint64) error {
	return s.record("delete-pending")
}
func (s *recordingStore) UpsertExchangeCounter(ctx context.Context, totalOrders uint64) error {
	return s.record("exchange-counter")
}
func (s *recordingStore) BatchUpdateMarkets(ctx context.Context, stats []exchange.MarketStats) error {
	return s.record("markets")
}
func (s *recordingStore) BatchInsertTrades(ctx context.Context, trades []types.Trade) error {
	return s.record("trades")
}

func hasBefore(calls []string, a, b string) bool {
	ai, bi := -1, -1
	for i, c := range calls {
		if c == a {
			ai = i
		}
		if c == b {
			bi = i
		}
	}
	return ai != -1 && bi != -1 && ai < bi
}

func contains(calls []string, name string) bool {
	for _, c := range calls {
		if c == name {
			return true
		}
	}
	return false
}

// S6: insert-orders must execute before the trade buffer append, and
// if insert-orders fails, trades must never be issued.
func TestDrainOrderingRespectsForeignKeys(t *testing.T) {
	ex := exchange.New(0)
	buy := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	ex.Submit(buy)
	sell := types.NewOrder(2, "AAPL", types.Sell, 10, 99.00)
	_, trades := ex.Submit(sell)

	store := &recordingStore{}
	bc := NewBufferCollection(10, 10, store, ex)
	bc.Orders.RecordInsert(buy)
	bc.Orders.RecordInsert(sell)
	bc.Orders.RecordUpdate(buy.OrderID, types.Complete, 10, true)
	bc.Trades.Append(trades...)

	if err := bc.ForceFlush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasBefore(store.calls, "insert-orders", "trades") {
		t.Fatalf("expected insert-orders before trades, got %v", store.calls)
	}
	if !hasBefore(store.calls, "insert-orders", "exchange-counter") {
		t.Fatalf("expected insert-orders before exchange-counter, got %v", store.calls)
	}
	if !hasBefore(store.calls, "exchange-counter", "trades") {
		t.Fatalf("expected exchange-counter before trades, got %v", store.calls)
	}
}

func TestDrainAbortsBeforeTradesWhenInsertOrdersFails(t *testing.T) {
	ex := exchange.New(0)
	buy := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	ex.Submit(buy)

	store := &recordingStore{failOn: "insert-orders", failErr: errors.New("boom")}
	bc := NewBufferCollection(10, 10, store, ex)
	bc.Orders.RecordInsert(buy)
	bc.Trades.Append(types.NewTrade(buy, buy, 1))

	err := bc.ForceFlush(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing insert-orders batch")
	}
	if contains(store.calls, "trades") {
		t.Fatalf("expected trades batch to never be issued when insert-orders fails, got %v", store.calls)
	}
}

func TestUpdateBufferStatesDoesNotDrainBelowWatermark(t *testing.T) {
	ex := exchange.New(0)
	store := &recordingStore{}
	bc := NewBufferCollection(100, 100, store, ex)

	o := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	o.OrderID = 1
	bc.Orders.RecordInsert(o)

	drained, err := bc.UpdateBufferStates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drained {
		t.Fatalf("expected no drain below the FULL watermark")
	}
	if bc.Orders.Len() != 1 {
		t.Fatalf("expected buffer untouched, got len=%d", bc.Orders.Len())
	}
}

func TestUpdateBufferStatesDrainsWhenFull(t *testing.T) {
	ex := exchange.New(0)
	store := &recordingStore{}
	bc := NewBufferCollection(2, 100, store, ex)

	o := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	o.OrderID = 1
	bc.Orders.RecordInsert(o)
	o2 := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	o2.OrderID = 2
	bc.Orders.RecordInsert(o2)

	drained, err := bc.UpdateBufferStates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drained {
		t.Fatalf("expected drain once order buffer exceeds the 0.9 watermark")
	}
	if bc.Orders.Len() != 0 {
		t.Fatalf("expected buffer drained")
	}
}

func TestTradeBufferFullForcesOrderDrainFirst(t *testing.T) {
	ex := exchange.New(0)
	store := &recordingStore{}
	bc := NewBufferCollection(100, 2, store, ex)

	o := types.NewOrder(1, "AAPL", types.Buy, 10, 100.00)
	o.OrderID = 1
	bc.Orders.RecordInsert(o)

	resting := types.NewOrder(1, "AAPL", types.Buy, 1, 10.00)
	resting.OrderID = 1
	filler := types.NewOrder(2, "AAPL", types.Sell, 1, 10.00)
	filler.OrderID = 2
	bc.Trades.Append(types.NewTrade(resting, filler, 1), types.NewTrade(resting, filler, 1))

	drained, err := bc.UpdateBufferStates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drained {
		t.Fatalf("expected trade buffer FULL to force an order-buffer drain too")
	}
	if !hasBefore(store.calls, "insert-orders", "trades") {
		t.Fatalf("expected insert-orders before trades even when triggered by trade buffer fullness, got %v", store.calls)
	}
}
