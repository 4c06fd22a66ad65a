package testutils

import (
	"github.com/jaredmoss/exchange-core/internal/api/models"
)

// NewLimitBuyOrder creates a limit buy order request.
func NewLimitBuyOrder(username, password, symbol string, price float64, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		Username: username,
		Password: password,
		Symbol:   symbol,
		Side:     "buy",
		Price:    price,
		Quantity: quantity,
	}
}

// NewLimitSellOrder creates a limit sell order request.
func NewLimitSellOrder(username, password, symbol string, price float64, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		Username: username,
		Password: password,
		Symbol:   symbol,
		Side:     "sell",
		Price:    price,
		Quantity: quantity,
	}
}

// NewAccountRequest creates an account-creation request.
func NewAccountRequest(username, password string) models.CreateAccountRequest {
	return models.CreateAccountRequest{Username: username, Password: password}
}
