package models

import "strings"

// CreateAccountRequest is the body for POST /api/v1/accounts.
type CreateAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the account-creation request.
func (r *CreateAccountRequest) Validate() *HTTPError {
	if strings.TrimSpace(r.Username) == "" {
		return ErrBadRequest("username cannot be empty", map[string]interface{}{"field": "username"})
	}
	if r.Password == "" {
		return ErrBadRequest("password cannot be empty", map[string]interface{}{"field": "password"})
	}
	return nil
}

// SubmitOrderRequest is the body for POST /api/v1/orders. Every order
// is a limit order (spec.md carries no market-order concept).
type SubmitOrderRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"` // "buy" | "sell"
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Validate validates the order request.
func (r *SubmitOrderRequest) Validate() *HTTPError {
	if strings.TrimSpace(r.Username) == "" {
		return ErrBadRequest("username cannot be empty", map[string]interface{}{"field": "username"})
	}
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrBadRequest("symbol cannot be empty", map[string]interface{}{"field": "symbol"})
	}

	side := strings.ToLower(strings.TrimSpace(r.Side))
	if side != "buy" && side != "sell" {
		return ErrInvalidSideError(r.Side)
	}

	if r.Quantity <= 0 {
		return ErrInvalidQuantityError(r.Quantity)
	}
	if r.Price <= 0 {
		return ErrInvalidPriceError(r.Price)
	}

	return nil
}

// CancelOrderRequest is the body for DELETE
// /api/v1/orders/{symbol}/{order_id}.
type CancelOrderRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Symbol   string `json:"symbol"`
}

// Validate validates the cancel request.
func (r *CancelOrderRequest) Validate() *HTTPError {
	if strings.TrimSpace(r.Username) == "" {
		return ErrBadRequest("username cannot be empty", map[string]interface{}{"field": "username"})
	}
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrBadRequest("symbol cannot be empty", map[string]interface{}{"field": "symbol"})
	}
	return nil
}

// AuthRequest is the body shape for the account-summary endpoint,
// which only needs to authenticate, not submit or cancel anything.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates an auth-only request.
func (r *AuthRequest) Validate() *HTTPError {
	if strings.TrimSpace(r.Username) == "" {
		return ErrBadRequest("username cannot be empty", map[string]interface{}{"field": "username"})
	}
	if r.Password == "" {
		return ErrBadRequest("password cannot be empty", map[string]interface{}{"field": "password"})
	}
	return nil
}
