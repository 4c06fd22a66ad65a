package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/jaredmoss/exchange-core/internal/api/models"
	"github.com/jaredmoss/exchange-core/internal/types"
)

func bookLevelFromOrder(o *types.Order) *models.BookLevelDTO {
	return &models.BookLevelDTO{
		OrderID:  o.OrderID,
		Price:    o.Price,
		Quantity: o.Quantity,
		Filled:   o.Filled,
	}
}

// symbolFromPath extracts the trailing {symbol} segment from paths
// shaped /api/v1/market/{symbol}/{price|show|history}.
func symbolFromPath(path string, suffix string) (string, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/"+suffix)
	parts := strings.Split(trimmed, "/")
	if len(parts) < 4 {
		return "", false
	}
	symbol := parts[len(parts)-1]
	if symbol == "" {
		return "", false
	}
	return symbol, true
}

// PriceHandler handles GET /api/v1/market/{symbol}/price.
func (dh *DispatchHolder) PriceHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolFromPath(r.URL.Path, "price")
	if !ok {
		writeErrorResponse(w, models.ErrBadRequest("symbol is required", nil))
		return
	}

	price, err := dh.D.Price(symbol)
	if err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	writeJSON(w, http.StatusOK, models.PriceResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC()},
		Symbol:       symbol,
		Price:        price,
	})
}

// ShowMarketHandler handles GET /api/v1/market/{symbol}/show.
func (dh *DispatchHolder) ShowMarketHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolFromPath(r.URL.Path, "show")
	if !ok {
		writeErrorResponse(w, models.ErrBadRequest("symbol is required", nil))
		return
	}

	snapshot, err := dh.D.ShowMarket(symbol)
	if err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	resp := models.ShowMarketResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC()},
		Symbol:       symbol,
		BidDepth:     len(snapshot.Bids),
		AskDepth:     len(snapshot.Asks),
	}
	if len(snapshot.Bids) > 0 {
		resp.BestBid = bookLevelFromOrder(snapshot.Bids[0])
	}
	if len(snapshot.Asks) > 0 {
		resp.BestAsk = bookLevelFromOrder(snapshot.Asks[0])
	}

	writeJSON(w, http.StatusOK, resp)
}

// MarketHistoryHandler handles GET /api/v1/market/{symbol}/history.
func (dh *DispatchHolder) MarketHistoryHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolFromPath(r.URL.Path, "history")
	if !ok {
		writeErrorResponse(w, models.ErrBadRequest("symbol is required", nil))
		return
	}

	trades := dh.D.MarketHistory(symbol)
	writeJSON(w, http.StatusOK, models.MarketHistoryResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC()},
		Symbol:       symbol,
		Trades:       tradesToDTO(trades),
		Count:        len(trades),
	})
}
