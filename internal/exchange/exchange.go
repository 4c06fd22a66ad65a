// Package exchange implements the exchange registry (spec.md §4.2): a
// map of symbol to order book, per-symbol market statistics, and the
// process-wide monotonic order-ID counter. It owns C2 books but never
// touches accounts or persistence — those are the caller's job
// (internal/dispatch).
package exchange

import (
	"errors"
	"sync"
	"time"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/matching"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// Errors returned by GetPrice, matching spec.md §7's LookupMiss kind.
var (
	ErrNoMarket = errors.New("exchange: no market for symbol")
	ErrNoTrades = errors.New("exchange: market has no trades yet")
)

// MarketStats tracks per-symbol counters. Counters on filled_* count
// trades, not completed orders (spec.md §9 "counter of trades vs
// completions").
type MarketStats struct {
	Symbol      string
	TotalBuys   int64
	TotalSells  int64
	FilledBuys  int64
	FilledSells int64
	LastPrice   *float64
	Modified    bool
}

type market struct {
	book  *matching.OrderBook
	stats *MarketStats
}

// Exchange is the registry of all symbols' order books and stats. Not
// safe for concurrent use by design (spec.md §5: single-writer,
// cooperative); the mutex guards against accidental concurrent access
// rather than enabling it.
type Exchange struct {
	mu          sync.Mutex
	markets     map[string]*market
	totalOrders uint64
	history     map[string][]types.Trade
}

// New returns an empty registry with the order-ID counter seeded from
// persisted state (0 on a fresh store).
func New(seedTotalOrders uint64) *Exchange {
	return &Exchange{
		markets:     make(map[string]*market),
		totalOrders: seedTotalOrders,
		history:     make(map[string][]types.Trade),
	}
}

// TotalOrders returns the current order-ID counter value.
func (e *Exchange) TotalOrders() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalOrders
}

// SeedBook places a previously-persisted resting order directly onto
// its symbol's book, bypassing matching. Used once at startup to
// rehydrate the in-memory registry from the persistence port's
// load_all_open_books (spec.md §6); the store is the authority that
// these orders are mutually non-crossing.
func (e *Exchange) SeedBook(symbol string, o *types.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.marketFor(symbol).book.Insert(o)
}

// SeedStats initializes a symbol's durable counters at startup from
// the persistence port's load_market_stats (spec.md §6). Must run
// before any Submit call for the same symbol: it overwrites the
// counters rather than adding to them. Its order relative to SeedBook
// does not matter.
func (e *Exchange) SeedStats(symbol string, totalBuys, totalSells, filledBuys, filledSells int64, lastPrice *float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.marketFor(symbol)
	m.stats.TotalBuys = totalBuys
	m.stats.TotalSells = totalSells
	m.stats.FilledBuys = filledBuys
	m.stats.FilledSells = filledSells
	m.stats.LastPrice = lastPrice
}

func (e *Exchange) marketFor(symbol string) *market {
	m, ok := e.markets[symbol]
	if !ok {
		m = &market{
			book:  matching.NewOrderBook(),
			stats: &MarketStats{Symbol: symbol},
		}
		e.markets[symbol] = m
	}
	return m
}

// Submit assigns the order its order_id, matches it against the book,
// updates stats, and places any residual quantity onto the book. It
// returns every resting order the match touched (including the
// incoming order itself if it now rests) plus the trades produced.
func (e *Exchange) Submit(o *types.Order) (touched []*types.Order, trades []types.Trade) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.totalOrders++
	o.OrderID = e.totalOrders
	o.TimePlaced = time.Now()

	m := e.marketFor(o.Symbol)

	switch o.Side {
	case types.Buy:
		m.stats.TotalBuys++
	case types.Sell:
		m.stats.TotalSells++
	}

	resting, produced := matching.MatchIncoming(m.book, o)
	touched = resting
	trades = produced

	for _, t := range produced {
		// Every trade pairs one buy order with one sell order regardless
		// of which side submitted the incoming order, so both counters
		// advance once per trade (spec.md §8 S2).
		m.stats.FilledBuys++
		m.stats.FilledSells++
		price := t.Price
		m.stats.LastPrice = &price
	}
	m.stats.Modified = true

	if len(produced) > 0 {
		e.history[o.Symbol] = append(e.history[o.Symbol], produced...)
	}

	if o.Residual() > 0 {
		o.Status = types.Pending
		m.book.Insert(o)
		touched = append(touched, o)
	} else {
		o.Status = types.Complete
	}

	logger.Debug("exchange.Submit", map[string]interface{}{
		"order_id": o.OrderID, "symbol": o.Symbol, "trades": len(trades),
	})

	return touched, trades
}

// Cancel removes a resting order from its symbol's book. Returns the
// removed order and true on success.
func (e *Exchange) Cancel(symbol string, orderID uint64) (*types.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[symbol]
	if !ok {
		return nil, false
	}
	o, ok := m.book.Cancel(orderID)
	if !ok {
		return nil, false
	}
	o.Status = types.Cancelled
	o.TimeUpdated = time.Now()
	return o, true
}

// GetPrice returns the last traded price for symbol.
func (e *Exchange) GetPrice(symbol string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[symbol]
	if !ok {
		return 0, ErrNoMarket
	}
	if m.stats.LastPrice == nil {
		return 0, ErrNoTrades
	}
	return *m.stats.LastPrice, nil
}

// BookSnapshot is a read-only top-of-book view for ShowMarket.
type BookSnapshot struct {
	Stats MarketStats
	Bids  []*types.Order
	Asks  []*types.Order
}

// ShowMarket returns the current book state and stats for symbol.
func (e *Exchange) ShowMarket(symbol string) (BookSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[symbol]
	if !ok {
		return BookSnapshot{}, ErrNoMarket
	}
	return BookSnapshot{
		Stats: *m.stats,
		Bids:  m.book.SnapshotBids(),
		Asks:  m.book.SnapshotAsks(),
	}, nil
}

// MarketHistory returns the in-memory trade history for symbol since
// process start. This is not a durable audit log; durable history is
// a query against the persistence port's ExecutedTrades table.
func (e *Exchange) MarketHistory(symbol string) []types.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.history[symbol]
	out := make([]types.Trade, len(h))
	copy(out, h)
	return out
}

// MarketStatsSnapshot returns every symbol whose stats are modified
// since the last drain, for the buffer pipeline's "modified market
// stats rows" step (spec.md §4.5 step 4).
func (e *Exchange) MarketStatsSnapshot() []MarketStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []MarketStats
	for _, m := range e.markets {
		if m.stats.Modified {
			out = append(out, *m.stats)
		}
	}
	return out
}

// ClearModifiedStats resets the modified flag on every market's
// stats, called after a successful drain (spec.md §4.5 "modified
// market-stats rows", §8 invariant 4).
func (e *Exchange) ClearModifiedStats() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.markets {
		m.stats.Modified = false
	}
}
