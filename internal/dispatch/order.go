package dispatch

import (
	"context"
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// SubmitOrderResult is returned to the caller of SubmitOrder.
type SubmitOrderResult struct {
	Order  *types.Order
	Trades []types.Trade
}

// SubmitOrder implements the new-order control flow from spec.md §2:
// authenticate -> validate_self_cross -> C3.submit -> per-trade
// account updates -> buffer pushes -> post-step buffer-state check.
func (d *Dispatcher) SubmitOrder(ctx context.Context, username, password, symbol string, side types.Side, quantity int64, price float64) (*SubmitOrderResult, error) {
	// OrderReject/Malformed is caller-side (spec.md §7): checked here,
	// before types.NewOrder, which panics on the same conditions as an
	// Invariant/Violation for callers that skip this check.
	if quantity <= 0 || price <= 0 {
		return nil, ErrMalformedOrder
	}

	user, err := d.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	incoming := types.NewOrder(user.UserID, symbol, side, quantity, price)

	if offender, reject := user.ValidateSelfCross(incoming); reject {
		return nil, &SelfCrossError{Offender: offender}
	}

	touched, trades := d.ex.Submit(incoming)

	for _, o := range touched {
		if o.OrderID == incoming.OrderID {
			continue
		}
		d.bc.Orders.RecordUpdate(o.OrderID, o.Status, o.Filled, true)
		if o.Status == types.Complete {
			d.removeFromOwner(ctx, o)
		}
	}

	for _, t := range trades {
		if err := d.applyTradeToAccounts(ctx, t); err != nil {
			return nil, err
		}
	}
	d.bc.Trades.Append(trades...)

	d.bc.Orders.RecordInsert(incoming)
	if incoming.Status == types.Pending {
		user.Insert(incoming)
	} else {
		user.Touch()
	}

	drained, err := d.bc.UpdateBufferStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch: post-submit buffer check: %w", err)
	}
	if drained {
		d.cache.ResetAllModified()
	}

	logger.Info("dispatch.SubmitOrder", map[string]interface{}{
		"username": username, "symbol": symbol, "order_id": incoming.OrderID, "trades": len(trades),
	})

	return &SubmitOrderResult{Order: incoming, Trades: trades}, nil
}

// applyTradeToAccounts updates both participants' sub-caches for a
// single trade, per spec.md §2's "update both participants' sub-caches
// (C4)" step. The filled (resting) side leaves the book when
// complete; that removal is already handled by the caller via
// removeFromOwner for every touched order. Here we only mark the
// filled side's owner (the counter-party) dirty, loading it if it is
// not resident; the submitter's own bookkeeping happens in SubmitOrder.
func (d *Dispatcher) applyTradeToAccounts(ctx context.Context, t types.Trade) error {
	filled, err := d.counterparty(ctx, t.FilledUserID)
	if err != nil {
		return fmt.Errorf("dispatch: load filled participant: %w", err)
	}
	filled.Touch()
	return nil
}

// removeFromOwner evicts a completed/cancelled order from its owning
// account's sub-cache.
func (d *Dispatcher) removeFromOwner(ctx context.Context, o *types.Order) {
	owner, err := d.counterparty(ctx, o.UserID)
	if err != nil {
		logger.Warn("dispatch.removeFromOwner could not resolve owner", map[string]interface{}{
			"order_id": o.OrderID, "user_id": o.UserID, "err": err.Error(),
		})
		return
	}
	owner.Remove(o.Symbol, o.OrderID)
}

// CancelOrder implements spec.md §4.7's cancel flow: authenticate,
// verify ownership (cache first, persistence otherwise), then
// exchange.Cancel, recording an UPDATE diff with status=CANCELLED.
func (d *Dispatcher) CancelOrder(ctx context.Context, username, password, symbol string, orderID uint64) error {
	user, err := d.authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	if _, ok := user.Lookup(symbol, orderID); !ok {
		return ErrOrderNotFound
	}

	cancelled, ok := d.ex.Cancel(symbol, orderID)
	if !ok {
		return ErrOrderNotFound
	}

	user.Remove(symbol, orderID)
	d.bc.Orders.RecordUpdate(cancelled.OrderID, types.Cancelled, cancelled.Filled, false)

	drained, err := d.bc.UpdateBufferStates(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: post-cancel buffer check: %w", err)
	}
	if drained {
		d.cache.ResetAllModified()
	}

	logger.Info("dispatch.CancelOrder", map[string]interface{}{
		"username": username, "symbol": symbol, "order_id": orderID,
	})
	return nil
}
