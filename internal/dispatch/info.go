package dispatch

import (
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// Price implements the info/price request kind (spec.md §4.7): the
// last traded price for a symbol. No authentication is required; the
// exchange registry (C3) is read-only here.
func (d *Dispatcher) Price(symbol string) (float64, error) {
	return d.ex.GetPrice(symbol)
}

// ShowMarket implements the info/show request kind: current top-of-book
// depth for a symbol.
func (d *Dispatcher) ShowMarket(symbol string) (exchange.BookSnapshot, error) {
	return d.ex.ShowMarket(symbol)
}

// MarketHistory implements the info/history request kind: every trade
// executed so far for a symbol, oldest first.
func (d *Dispatcher) MarketHistory(symbol string) []types.Trade {
	return d.ex.MarketHistory(symbol)
}
