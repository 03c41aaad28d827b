package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Checkout error codes
const (
	// ErrCodeEmptyCart is used when a checkout is requested with no items
	ErrCodeEmptyCart = "ERR_EMPTY_CART"
	// ErrCodeItemNotFound is used when a cart references an unknown catalog item
	ErrCodeItemNotFound = "ERR_ITEM_NOT_FOUND"
	// ErrCodeAmountMismatch is used when the claimed total disagrees with the
	// server-priced total
	ErrCodeAmountMismatch = "ERR_AMOUNT_MISMATCH"
	// ErrCodePaymentProvider is used when the payment processor rejects or
	// fails the session creation call
	ErrCodePaymentProvider = "ERR_PAYMENT_PROVIDER"
)

// Webhook error codes
const (
	// ErrCodeInvalidSignature is used when webhook signature verification fails
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation and input errors -> 400 Bad Request
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Checkout errors. The amount mismatch is a client pricing disagreement,
	// not a server fault, so it is a 400; the provider failure is an upstream
	// fault, surfaced as 502 so callers can retry.
	ErrCodeEmptyCart:       http.StatusBadRequest,
	ErrCodeItemNotFound:    http.StatusBadRequest,
	ErrCodeAmountMismatch:  http.StatusBadRequest,
	ErrCodePaymentProvider: http.StatusBadGateway,

	// Webhook errors
	ErrCodeInvalidSignature: http.StatusBadRequest,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"EMPTY_CART":              ErrCodeEmptyCart,
	"ITEM_NOT_FOUND":          ErrCodeItemNotFound,
	"AMOUNT_MISMATCH":         ErrCodeAmountMismatch,
	"PAYMENT_PROVIDER":        ErrCodePaymentProvider,
	"INVALID_SIGNATURE":       ErrCodeInvalidSignature,
	"INVALID_SESSION":         ErrCodeBadRequest,
	"INVALID_USER":            ErrCodeBadRequest,
	"INVALID_ITEM":            ErrCodeValidation,
	"INVALID_QUANTITY":        ErrCodeValidation,
	"INVALID_AMOUNT":          ErrCodeValidation,
	"INVALID_PRICE":           ErrCodeValidation,
	"INVALID_CURRENCY":        ErrCodeValidation,
	"INVALID_UNIT":            ErrCodeValidation,
	"INVALID_DELIVERY_STATUS": ErrCodeInvalidState,
	"USER_MISMATCH":           ErrCodeConflict,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the wire format
// If the code is already in the wire format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
