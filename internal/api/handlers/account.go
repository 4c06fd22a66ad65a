package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/api/models"
)

// CreateAccountHandler handles account creation.
func (dh *DispatchHolder) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}
	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	a, err := dh.D.CreateAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	logger.Info("Account created", map[string]interface{}{"username": a.Username, "user_id": a.UserID})

	writeJSON(w, http.StatusOK, models.CreateAccountResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC(), Message: "account created"},
		UserID:       a.UserID,
		Username:     a.Username,
	})
}

// AccountSummaryHandler handles the per-user open-orders/trade-count summary.
func (dh *DispatchHolder) AccountSummaryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}
	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	summary, err := dh.D.AccountSummary(r.Context(), req.Username, req.Password)
	if err != nil {
		writeErrorResponse(w, dispatchError(err))
		return
	}

	openOrders := make([]models.OrderDTO, len(summary.OpenOrders))
	for i, o := range summary.OpenOrders {
		openOrders[i] = orderToDTO(o)
	}

	writeJSON(w, http.StatusOK, models.AccountSummaryResponse{
		BaseResponse: models.BaseResponse{Success: true, Timestamp: time.Now().UTC()},
		UserID:       summary.UserID,
		Username:     summary.Username,
		OpenOrders:   openOrders,
		TradeCount:   summary.TradeCount,
	})
}
