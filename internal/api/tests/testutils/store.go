package testutils

import (
	"context"
	"errors"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// fakeAPIStore is an in-memory persistence.Store for end-to-end API
// tests, mirroring internal/dispatch's fakeStore: accounts created via
// InsertAccount persist for the life of the test server; batch writes
// are no-ops since nothing in this package inspects what was flushed.
type fakeAPIStore struct {
	accounts map[string]*account.Account
	byID     map[uint64]string
}

func newFakeAPIStore() *fakeAPIStore {
	return &fakeAPIStore{accounts: make(map[string]*account.Account), byID: make(map[uint64]string)}
}

func (s *fakeAPIStore) LoadAllOpenBooks(ctx context.Context) (map[string][]*types.Order, error) {
	return nil, nil
}
func (s *fakeAPIStore) LoadMarketStats(ctx context.Context) ([]persistence.MarketSeed, error) {
	return nil, nil
}
func (s *fakeAPIStore) LoadExchangeCounter(ctx context.Context) (uint64, error) { return 0, nil }
func (s *fakeAPIStore) AccountExists(ctx context.Context, username string) (bool, error) {
	_, ok := s.accounts[username]
	return ok, nil
}
func (s *fakeAPIStore) CountAccounts(ctx context.Context) (uint64, error) {
	return uint64(len(s.accounts)), nil
}
func (s *fakeAPIStore) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	a, ok := s.accounts[username]
	if !ok {
		return 0, "", false, nil
	}
	return a.UserID, a.PasswordHash, true, nil
}
func (s *fakeAPIStore) LoadAccount(ctx context.Context, username string) (*account.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, errors.New("fakeAPIStore: no such account")
	}
	return account.NewWithHash(a.UserID, a.Username, a.PasswordHash), nil
}
func (s *fakeAPIStore) LoadUsername(ctx context.Context, userID uint64) (string, error) {
	u, ok := s.byID[userID]
	if !ok {
		return "", errors.New("fakeAPIStore: no such user_id")
	}
	return u, nil
}
func (s *fakeAPIStore) LoadOpenOrders(ctx context.Context, userID uint64) (map[string]map[uint64]*types.Order, error) {
	return nil, nil
}
func (s *fakeAPIStore) LoadUserTrades(ctx context.Context, userID uint64) ([]types.Trade, error) {
	return nil, nil
}
func (s *fakeAPIStore) InsertAccount(ctx context.Context, a *account.Account) error {
	s.accounts[a.Username] = a
	s.byID[a.UserID] = a.Username
	return nil
}
func (s *fakeAPIStore) BatchInsertOrders(ctx context.Context, diffs []persistence.OrderDiff) error {
	return nil
}
func (s *fakeAPIStore) BatchUpdateOrders(ctx context.Context, diffs []persistence.OrderDiff) error {
	return nil
}
func (s *fakeAPIStore) BatchInsertPending(ctx context.Context, orderIDs []uint64) error { return nil }
func (s *fakeAPIStore) BatchDeletePending(ctx context.Context, orderIDs []uint64) error { return nil }
func (s *fakeAPIStore) UpsertExchangeCounter(ctx context.Context, totalOrders uint64) error {
	return nil
}
func (s *fakeAPIStore) BatchUpdateMarkets(ctx context.Context, stats []exchange.MarketStats) error {
	return nil
}
func (s *fakeAPIStore) BatchInsertTrades(ctx context.Context, trades []types.Trade) error {
	return nil
}
