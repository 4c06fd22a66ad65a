package matching

import "github.com/jaredmoss/exchange-core/internal/types"

// MatchIncoming consumes an incoming order against the resting side
// of book, mutating the book in place, and returns the resting
// orders it touched (with updated Filled/Status) plus the trades
// produced. Does not touch accounts or persistence (spec.md §4.1).
//
// Algorithm, for an incoming BUY (symmetric for SELL): while the
// incoming has residual quantity, peek the best ask; stop if the
// book side is empty or the best ask's price exceeds the incoming's
// price (no cross). Otherwise trade min(ask.Residual, incoming.Residual)
// at the ask's price (maker price — price improvement accrues to the
// resting side). If the ask is fully filled, pop and mark it
// COMPLETE; otherwise the incoming is full and the ask stays resting,
// partially filled.
func MatchIncoming(book *OrderBook, incoming *types.Order) (resting []*types.Order, trades []types.Trade) {
	switch incoming.Side {
	case types.Buy:
		return matchAgainstAsks(book, incoming)
	case types.Sell:
		return matchAgainstBids(book, incoming)
	default:
		return nil, nil
	}
}

func matchAgainstAsks(book *OrderBook, incoming *types.Order) (resting []*types.Order, trades []types.Trade) {
	for incoming.Residual() > 0 {
		top := book.BestAsk()
		if top == nil {
			break
		}
		if top.Price > incoming.Price {
			break
		}

		tradeQty := min64(top.Residual(), incoming.Residual())
		top.Filled += tradeQty
		incoming.Filled += tradeQty

		trades = append(trades, types.NewTrade(top, incoming, tradeQty))

		if top.Residual() == 0 {
			top.Status = types.Complete
			book.PopBestAsk()
			resting = append(resting, top)
		} else {
			resting = append(resting, top)
			break
		}
	}
	return resting, trades
}

func matchAgainstBids(book *OrderBook, incoming *types.Order) (resting []*types.Order, trades []types.Trade) {
	for incoming.Residual() > 0 {
		top := book.BestBid()
		if top == nil {
			break
		}
		if top.Price < incoming.Price {
			break
		}

		tradeQty := min64(top.Residual(), incoming.Residual())
		top.Filled += tradeQty
		incoming.Filled += tradeQty

		trades = append(trades, types.NewTrade(top, incoming, tradeQty))

		if top.Residual() == 0 {
			top.Status = types.Complete
			book.PopBestBid()
			resting = append(resting, top)
		} else {
			resting = append(resting, top)
			break
		}
	}
	return resting, trades
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
