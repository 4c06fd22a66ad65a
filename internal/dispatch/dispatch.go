// Package dispatch implements the request dispatcher (spec.md §4.7):
// thin glue that authenticates against the user cache (C5), validates
// self-crosses (C4), routes to the exchange registry (C3), and pushes
// the resulting diffs into the buffered persistence pipeline (C6).
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/types"
	"github.com/jaredmoss/exchange-core/internal/usercache"
)

// Errors surfaced to callers per spec.md §7.
var (
	ErrMalformedOrder = errors.New("dispatch: quantity and price must be positive")
	ErrOrderNotFound  = errors.New("dispatch: order not found among the user's open orders")
	ErrAccountExists  = errors.New("dispatch: username already registered")
)

// SelfCrossError is the OrderReject/SelfCross kind (spec.md §7),
// carrying the offending resting order for the caller to report.
type SelfCrossError struct {
	Offender *types.Order
}

func (e *SelfCrossError) Error() string {
	return fmt.Sprintf("dispatch: self-cross against resting order_id=%d", e.Offender.OrderID)
}

// Dispatcher owns every component reference the request kinds need
// and is the sole writer across them (spec.md §5).
type Dispatcher struct {
	cache *usercache.Cache
	ex    *exchange.Exchange
	bc    *persistence.BufferCollection
	store persistence.Store
}

// New wires a Dispatcher over already-constructed components.
func New(cache *usercache.Cache, ex *exchange.Exchange, bc *persistence.BufferCollection, store persistence.Store) *Dispatcher {
	return &Dispatcher{cache: cache, ex: ex, bc: bc, store: store}
}

func (d *Dispatcher) forceFlush(ctx context.Context) func() {
	return func() {
		if err := d.bc.ForceFlush(ctx); err != nil {
			panic(fmt.Sprintf("dispatch: forced flush failed: %v", err))
		}
		d.cache.ResetAllModified()
	}
}

// authenticate resolves username/password to a resident account,
// handling the cache-miss load and eviction-interlock retry
// internally (spec.md §4.4).
func (d *Dispatcher) authenticate(ctx context.Context, username, password string) (*account.Account, error) {
	a, err := d.cache.Authenticate(ctx, username, password, storeCredentialSource{d.store}, d.forceFlush(ctx))
	if err != nil {
		return nil, err
	}
	if !a.IsComplete() {
		if err := d.hydratePending(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// hydratePending fills a's pending sub-cache from the persistence
// port the first time it becomes resident, then marks it complete
// (spec.md §3 PendingOrderIndex.is_complete).
func (d *Dispatcher) hydratePending(ctx context.Context, a *account.Account) error {
	open, err := d.store.LoadOpenOrders(ctx, a.UserID)
	if err != nil {
		return fmt.Errorf("dispatch: hydrate pending orders: %w", err)
	}
	for _, bySymbol := range open {
		for _, o := range bySymbol {
			a.Insert(o)
		}
	}
	a.Modified = false
	a.MarkComplete()
	return nil
}

// counterparty resolves the account owning userID, loading it
// (load_for_update) if not already resident.
func (d *Dispatcher) counterparty(ctx context.Context, userID uint64) (*account.Account, error) {
	if a, ok := d.cache.GetByUserID(userID); ok {
		return a, nil
	}
	username, err := d.store.LoadUsername(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: resolve counter-party username: %w", err)
	}
	a, err := d.cache.LoadForUpdate(ctx, username, d.loadAccount, d.forceFlush(ctx))
	if err != nil {
		return nil, err
	}
	if !a.IsComplete() {
		if err := d.hydratePending(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (d *Dispatcher) loadAccount(ctx context.Context, username string) (*account.Account, error) {
	return d.store.LoadAccount(ctx, username)
}

type storeCredentialSource struct {
	store persistence.Store
}

func (s storeCredentialSource) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	return s.store.AuthLookup(ctx, username)
}
