package persistence

import (
	"context"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// MarketSeed describes a durable market row for load_market_stats.
type MarketSeed struct {
	Symbol      string
	Name        string
	TotalBuys   int64
	TotalSells  int64
	FilledBuys  int64
	FilledSells int64
	LastPrice   *float64
}

// Store is the persistence port (spec.md §4.6): every operation the
// buffer drain and user cache invoke against the relational store.
// Each batch operation is expected to run in a single transaction.
type Store interface {
	// Startup loads.
	LoadAllOpenBooks(ctx context.Context) (map[string][]*types.Order, error)
	LoadMarketStats(ctx context.Context) ([]MarketSeed, error)
	LoadExchangeCounter(ctx context.Context) (uint64, error)

	// Account and credential lookups.
	AccountExists(ctx context.Context, username string) (bool, error)
	CountAccounts(ctx context.Context) (uint64, error)
	AuthLookup(ctx context.Context, username string) (userID uint64, passwordHash string, found bool, err error)
	LoadAccount(ctx context.Context, username string) (*account.Account, error)
	LoadUsername(ctx context.Context, userID uint64) (string, error)
	LoadOpenOrders(ctx context.Context, userID uint64) (map[string]map[uint64]*types.Order, error)
	LoadUserTrades(ctx context.Context, userID uint64) ([]types.Trade, error)
	InsertAccount(ctx context.Context, a *account.Account) error

	// Batched drain writes; each call is one transaction.
	BatchInsertOrders(ctx context.Context, diffs []OrderDiff) error
	BatchUpdateOrders(ctx context.Context, diffs []OrderDiff) error
	BatchInsertPending(ctx context.Context, orderIDs []uint64) error
	BatchDeletePending(ctx context.Context, orderIDs []uint64) error
	UpsertExchangeCounter(ctx context.Context, totalOrders uint64) error
	BatchUpdateMarkets(ctx context.Context, stats []exchange.MarketStats) error
	BatchInsertTrades(ctx context.Context, trades []types.Trade) error
}
