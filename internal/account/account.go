// Package account implements the per-user account and pending-order
// sub-cache (spec.md §4.3): open-order indexing, self-cross
// validation, and credential hashing.
package account

import (
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// Account holds a user's identity, credential, and open-order
// sub-cache. UserID is assigned at first persist; Username is the
// external key.
type Account struct {
	UserID       uint64
	Username     string
	PasswordHash string
	Modified     bool

	// pending maps symbol -> order_id -> Order, mirroring spec.md's
	// PendingOrderIndex.
	pending map[string]map[uint64]*types.Order

	// isComplete is false until the persistence layer has fully
	// populated this account's pending set. While false,
	// ValidateSelfCross is not permitted (spec.md §4.3, §7
	// Invariant/Violation).
	isComplete bool
}

// New creates an account with a bcrypt-hashed credential. cost
// follows bcrypt.DefaultCost; callers needing a faster cost for tests
// should call NewWithHash directly.
func New(userID uint64, username, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}
	return NewWithHash(userID, username, string(hash)), nil
}

// NewWithHash builds an account from an already-hashed credential,
// used when loading an existing account from the persistence port.
func NewWithHash(userID uint64, username, passwordHash string) *Account {
	return &Account{
		UserID:       userID,
		Username:     username,
		PasswordHash: passwordHash,
		pending:      make(map[string]map[uint64]*types.Order),
	}
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// MarkComplete declares the pending sub-cache fully populated from
// persistence. Until this is called, ValidateSelfCross panics.
func (a *Account) MarkComplete() { a.isComplete = true }

// IsComplete reports whether the pending sub-cache is authoritative.
func (a *Account) IsComplete() bool { return a.isComplete }

// Insert adds a resting order to the sub-cache and marks the account
// dirty.
func (a *Account) Insert(o *types.Order) {
	bySymbol, ok := a.pending[o.Symbol]
	if !ok {
		bySymbol = make(map[uint64]*types.Order)
		a.pending[o.Symbol] = bySymbol
	}
	bySymbol[o.OrderID] = o
	a.Modified = true
}

// Remove deletes an order from the sub-cache (completed or
// cancelled) and marks the account dirty.
func (a *Account) Remove(symbol string, orderID uint64) {
	if bySymbol, ok := a.pending[symbol]; ok {
		delete(bySymbol, orderID)
	}
	a.Modified = true
}

// Lookup returns the open order for (symbol, orderID), if resident.
func (a *Account) Lookup(symbol string, orderID uint64) (*types.Order, bool) {
	bySymbol, ok := a.pending[symbol]
	if !ok {
		return nil, false
	}
	o, ok := bySymbol[orderID]
	return o, ok
}

// OpenOrders returns every resting order in the sub-cache for symbol.
func (a *Account) OpenOrders(symbol string) []*types.Order {
	bySymbol := a.pending[symbol]
	out := make([]*types.Order, 0, len(bySymbol))
	for _, o := range bySymbol {
		out = append(out, o)
	}
	return out
}

// AllOpenOrders returns every resting order across all symbols, used
// by the per-user account summary.
func (a *Account) AllOpenOrders() []*types.Order {
	var out []*types.Order
	for _, bySymbol := range a.pending {
		for _, o := range bySymbol {
			out = append(out, o)
		}
	}
	return out
}

// ValidateSelfCross checks whether incoming would cross against one
// of this account's own resting orders in the same symbol (spec.md
// §4.3). Precondition: IsComplete() == true, else this is an
// Invariant/Violation (§7) and panics. Returns the offending resting
// order and true if incoming must be rejected.
func (a *Account) ValidateSelfCross(incoming *types.Order) (offender *types.Order, reject bool) {
	if !a.isComplete {
		panic("account: ValidateSelfCross called on incomplete pending sub-cache")
	}

	bySymbol, ok := a.pending[incoming.Symbol]
	if !ok {
		return nil, false
	}

	for _, resting := range bySymbol {
		switch incoming.Side {
		case types.Buy:
			if resting.Side == types.Sell && incoming.Price >= resting.Price {
				return resting, true
			}
		case types.Sell:
			if resting.Side == types.Buy && incoming.Price <= resting.Price {
				return resting, true
			}
		}
	}
	return nil, false
}

// Touch marks the account dirty, used by the trade-update path when a counter-party's fill changes account state
// without inserting/removing an order (e.g. partial fill in place).
func (a *Account) Touch() {
	a.Modified = true
}
