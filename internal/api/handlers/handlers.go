// Package handlers adapts the request dispatcher (internal/dispatch)
// to HTTP: decode, validate, call, encode. No matching or persistence
// logic lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/api/models"
	"github.com/jaredmoss/exchange-core/internal/dispatch"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/types"
	"github.com/jaredmoss/exchange-core/internal/usercache"
)

// DispatchHolder wraps the request dispatcher for dependency injection
// into handlers, mirroring the teacher's EngineHolder pattern.
type DispatchHolder struct {
	D *dispatch.Dispatcher
}

// NewDispatchHolder creates a new dispatch holder.
func NewDispatchHolder(d *dispatch.Dispatcher) *DispatchHolder {
	return &DispatchHolder{D: d}
}

func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed", map[string]interface{}{
		"error_code": httpErr.Error.Code,
		"status":     httpErr.StatusCode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.StatusCode)

	response := models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	}
	json.NewEncoder(w).Encode(response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// dispatchError maps an error returned by the dispatcher to an HTTP
// error, the transport boundary's typed-error-code scheme.
func dispatchError(err error) *models.HTTPError {
	var selfCross *dispatch.SelfCrossError
	switch {
	case errors.As(err, &selfCross):
		return models.ErrSelfCrossError(selfCross.Offender.OrderID)
	case errors.Is(err, dispatch.ErrMalformedOrder):
		return models.ErrBadRequest(err.Error(), nil)
	case errors.Is(err, dispatch.ErrOrderNotFound):
		return models.ErrOrderNotFoundError(err.Error())
	case errors.Is(err, dispatch.ErrAccountExists):
		return models.ErrAccountExistsError(err.Error())
	case errors.Is(err, usercache.ErrNoUser), errors.Is(err, usercache.ErrBadPassword):
		return models.ErrAuthFailedError("invalid username or password")
	case errors.Is(err, exchange.ErrNoMarket), errors.Is(err, exchange.ErrNoTrades):
		return models.ErrNoMarketError(err.Error())
	default:
		return models.ErrInternal(err.Error())
	}
}

func sideToString(s types.Side) string { return string(s) }

func orderToDTO(o *types.Order) models.OrderDTO {
	return models.OrderDTO{
		OrderID:     o.OrderID,
		Symbol:      o.Symbol,
		Side:        sideToString(o.Side),
		Price:       o.Price,
		Quantity:    o.Quantity,
		Filled:      o.Filled,
		Status:      string(o.Status),
		TimePlaced:  o.TimePlaced,
		TimeUpdated: o.TimeUpdated,
	}
}

func tradeToDTO(t types.Trade) models.TradeDTO {
	return models.TradeDTO{
		Symbol:        t.Symbol,
		Side:          sideToString(t.Side),
		Price:         t.Price,
		FilledOrderID: t.FilledOrderID,
		FillerOrderID: t.FillerOrderID,
		Exchanged:     t.Exchanged,
		ExecutionTime: t.ExecutionTime,
	}
}

func tradesToDTO(trades []types.Trade) []models.TradeDTO {
	dtos := make([]models.TradeDTO, len(trades))
	for i, t := range trades {
		dtos[i] = tradeToDTO(t)
	}
	return dtos
}
