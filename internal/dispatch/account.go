package dispatch

import (
	"context"
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// CreateAccount implements the account-creation request kind (spec.md
// §4.7 request vocabulary `create u p`; SPEC_FULL §3 "Account creation
// flow", grounded on original_source/src/account.rs::Users::new_account).
func (d *Dispatcher) CreateAccount(ctx context.Context, username, password string) (*account.Account, error) {
	if _, ok := d.cache.Get(username); ok {
		return nil, ErrAccountExists
	}
	exists, err := d.store.AccountExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("dispatch: check account_exists: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	nextUserID, err := d.nextUserID(ctx)
	if err != nil {
		return nil, err
	}

	a, err := account.New(nextUserID, username, password)
	if err != nil {
		return nil, fmt.Errorf("dispatch: create account: %w", err)
	}
	if err := d.store.InsertAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("dispatch: insert_account: %w", err)
	}
	a.MarkComplete()

	if err := d.cache.Insert(a); err != nil {
		d.forceFlush(ctx)()
		if err := d.cache.Insert(a); err != nil {
			panic(fmt.Sprintf("dispatch: account cache insert failed after forced flush: %v", err))
		}
	}

	logger.Info("dispatch.CreateAccount", map[string]interface{}{"username": username, "user_id": nextUserID})
	return a, nil
}

// nextUserID assigns user_id = previous total + 1 (spec.md §3
// UserAccount: "user_id is assigned at first persist, = previous
// total + 1").
func (d *Dispatcher) nextUserID(ctx context.Context) (uint64, error) {
	total, err := d.store.CountAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("dispatch: count_accounts: %w", err)
	}
	return total + 1, nil
}

// AccountSummary folds the live pending-order sub-cache with a
// persistence-port read of the user's executed trades (SPEC_FULL §3,
// grounded on original_source/src/account.rs::print_user).
type AccountSummary struct {
	Username   string
	UserID     uint64
	OpenOrders []*types.Order
	TradeCount int
}

// AccountSummary authenticates then reports a per-user summary.
func (d *Dispatcher) AccountSummary(ctx context.Context, username, password string) (*AccountSummary, error) {
	user, err := d.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	trades, err := d.store.LoadUserTrades(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: load_user_trades: %w", err)
	}
	return &AccountSummary{
		Username:   user.Username,
		UserID:     user.UserID,
		OpenOrders: user.AllOpenOrders(),
		TradeCount: len(trades),
	}, nil
}
