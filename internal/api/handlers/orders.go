package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/api/models"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// SubmitOrderHandler handles order submission.
func (dh *DispatchHolder) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}
	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	side := types.Buy
	if strings.EqualFold(req.Side, "sell") {
		side = types.Sell
	}

	result, err := dh.D.SubmitOrder(r.Context(), req.Username, req.Password, req.Symbol, side, req.Quantity, req.Price)
	if err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	logger.Info("Order submitted", map[string]interface{}{
		"order_id": result.Order.OrderID,
		"symbol":   req.Symbol,
		"side":     req.Side,
		"trades":   len(result.Trades),
	})

	orderDTO := orderToDTO(result.Order)
	writeJSON(w, http.StatusOK, models.SubmitOrderResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC(), Message: "order submitted"},
		Order:        &orderDTO,
		Trades:       tradesToDTO(result.Trades),
	})
}

// CancelOrderHandler handles order cancellation. The symbol and
// order_id are path parameters: /api/v1/orders/{symbol}/{order_id}.
func (dh *DispatchHolder) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	symbol, orderID, ok := parseOrderPath(r.URL.Path)
	if !ok {
		writeErrorResponse(w, models.ErrBadRequest("Invalid order path, expected /orders/{symbol}/{order_id}", nil))
		return
	}

	var req models.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeErrorResponse(w, models.ErrBadRequest("username and password are required", nil))
		return
	}

	if err := dh.D.CancelOrder(r.Context(), req.Username, req.Password, symbol, orderID); err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	logger.Info("Order cancelled", map[string]interface{}{"symbol": symbol, "order_id": orderID})

	writeJSON(w, http.StatusOK, models.CancelOrderResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC(), Message: "order cancelled"},
		OrderID:      orderID,
	})
}

// parseOrderPath extracts {symbol}/{order_id} from a
// /api/v1/orders/{symbol}/{order_id} path.
func parseOrderPath(path string) (symbol string, orderID uint64, ok bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) < 5 {
		return "", 0, false
	}
	symbol = parts[3]
	orderID, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return symbol, orderID, true
}
