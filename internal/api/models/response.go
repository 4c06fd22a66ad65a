package models

import "time"

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents an executed trade in API responses.
type TradeDTO struct {
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Price         float64   `json:"price"`
	FilledOrderID uint64    `json:"filled_order_id"`
	FillerOrderID uint64    `json:"filler_order_id"`
	Exchanged     int64     `json:"exchanged"`
	ExecutionTime time.Time `json:"execution_time"`
}

// OrderDTO represents an order in API responses.
type OrderDTO struct {
	OrderID     uint64    `json:"order_id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	Filled      int64     `json:"filled"`
	Status      string    `json:"status"`
	TimePlaced  time.Time `json:"time_placed"`
	TimeUpdated time.Time `json:"time_updated,omitempty"`
}

// CreateAccountResponse represents the response for account creation.
type CreateAccountResponse struct {
	BaseResponse
	UserID   uint64 `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// SubmitOrderResponse represents the response for order submission.
type SubmitOrderResponse struct {
	BaseResponse
	Order  *OrderDTO  `json:"order,omitempty"`
	Trades []TradeDTO `json:"trades,omitempty"`
}

// CancelOrderResponse represents the response for order cancellation.
type CancelOrderResponse struct {
	BaseResponse
	OrderID uint64 `json:"order_id,omitempty"`
}

// AccountSummaryResponse represents the response for an account summary.
type AccountSummaryResponse struct {
	BaseResponse
	UserID     uint64     `json:"user_id,omitempty"`
	Username   string     `json:"username,omitempty"`
	OpenOrders []OrderDTO `json:"open_orders,omitempty"`
	TradeCount int        `json:"trade_count"`
}

// BookLevelDTO represents one resting order at the top of a book.
type BookLevelDTO struct {
	OrderID  uint64  `json:"order_id"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Filled   int64   `json:"filled"`
}

// ShowMarketResponse represents a top-of-book snapshot.
type ShowMarketResponse struct {
	BaseResponse
	Symbol   string        `json:"symbol"`
	BestBid  *BookLevelDTO `json:"best_bid,omitempty"`
	BestAsk  *BookLevelDTO `json:"best_ask,omitempty"`
	BidDepth int           `json:"bid_depth"`
	AskDepth int           `json:"ask_depth"`
}

// PriceResponse represents the last traded price for a symbol.
type PriceResponse struct {
	BaseResponse
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// MarketHistoryResponse represents a symbol's trade history.
type MarketHistoryResponse struct {
	BaseResponse
	Symbol string     `json:"symbol"`
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
