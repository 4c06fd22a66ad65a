package models

import "net/http"

// ErrorCode represents standard error codes
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrInvalidSide     ErrorCode = "INVALID_SIDE"
	ErrInvalidPrice    ErrorCode = "INVALID_PRICE"
	ErrInvalidQuantity ErrorCode = "INVALID_QUANTITY"
	ErrOrderNotFound   ErrorCode = "ORDER_NOT_FOUND"
	ErrAccountExists   ErrorCode = "ACCOUNT_EXISTS"
	ErrAuthFailed      ErrorCode = "AUTH_FAILED"
	ErrSelfCross       ErrorCode = "SELF_CROSS"
	ErrNoMarket        ErrorCode = "NO_MARKET"
	ErrInternalError   ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError wraps an APIError with an HTTP status code
type HTTPError struct {
	StatusCode int
	Error      APIError
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, code ErrorCode, message string, details map[string]interface{}) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Common error constructors

func ErrBadRequest(message string, details map[string]interface{}) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidRequest, message, details)
}

func ErrInvalidSideError(providedSide string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidSide,
		"Invalid side, must be 'buy' or 'sell'",
		map[string]interface{}{"provided_value": providedSide})
}

func ErrInvalidPriceError(price float64) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidPrice,
		"Price must be greater than 0",
		map[string]interface{}{"field": "price", "provided_value": price})
}

func ErrInvalidQuantityError(quantity int64) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidQuantity,
		"Quantity must be positive",
		map[string]interface{}{"field": "quantity", "provided_value": quantity})
}

func ErrOrderNotFoundError(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrOrderNotFound, message, nil)
}

func ErrAccountExistsError(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, ErrAccountExists, message, nil)
}

func ErrAuthFailedError(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, ErrAuthFailed, message, nil)
}

func ErrSelfCrossError(offendingOrderID uint64) *HTTPError {
	return NewHTTPError(http.StatusConflict, ErrSelfCross,
		"Order would cross against the account's own resting order",
		map[string]interface{}{"resting_order_id": offendingOrderID})
}

func ErrNoMarketError(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrNoMarket, message, nil)
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, ErrInternalError, message, nil)
}
