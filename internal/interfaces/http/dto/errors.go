package dto

import "net/http"

// Domain error codes surfaced over HTTP. The codes are produced by the
// domain and application layers; this map is the single place deciding how
// each one renders as a status code.
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvariantViolation  = "INVARIANT_VIOLATION"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeQuoteExpired        = "QUOTE_EXPIRED"
	ErrCodeQuoteConflict       = "QUOTE_CONFLICT"
	ErrCodeNoRates             = "NO_RATES"
	ErrCodeInvalidProduct      = "INVALID_PRODUCT"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidProduct:  http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,

	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeQuoteConflict:       http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	ErrCodeInvalidTransition:  http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeQuoteExpired:       http.StatusUnprocessableEntity,
	ErrCodeNoRates:            http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusInternalServerError,

	ErrCodeInvalidSignature:    http.StatusUnauthorized,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes render as 500 so nothing leaks as a false success.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
