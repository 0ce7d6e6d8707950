package core

import (
	"errors"
	"fmt"
	"sort"
)

// Standard sentinel errors for comparison using errors.Is().
// These are generic errors that can be wrapped with additional context.
var (
	// Session errors
	ErrUnauthenticated = errors.New("not authenticated")
	ErrSessionExpired  = errors.New("session expired")

	// Cart errors
	ErrCartNotFound         = errors.New("cart not found")
	ErrQuantityBelowMinimum = errors.New("quantity below minimum")

	// Checkout errors
	ErrPaymentCancelled = errors.New("payment cancelled")
	ErrPaymentFailed    = errors.New("payment failed")

	// Query/cache errors
	ErrSuperseded = errors.New("response superseded by newer request")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// Operation errors
	ErrTimeout            = errors.New("operation timeout")
	ErrContextCanceled    = errors.New("context canceled")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

	// HTTP/Network errors
	ErrConnectionFailed = errors.New("connection failed")
	ErrRequestFailed    = errors.New("request failed")
)

// GenericErrorMessage is shown when the server response carries no usable
// message. Raw JSON or transport detail is never surfaced to the user.
const GenericErrorMessage = "Something went wrong. Please try again."

// ClientError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type ClientError struct {
	Op      string // Operation that failed (e.g., "cart.Add")
	Kind    string // Error kind (e.g., "cart", "auth", "transport")
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *ClientError) Error() string {
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError
func NewClientError(op, kind string, err error) *ClientError {
	return &ClientError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// APIError represents a failure reported by the server: either a non-2xx
// status or a response envelope with success=false.
type APIError struct {
	StatusCode int                 // HTTP status, 0 when the envelope failed with 200
	Message    string              // Server-provided business message, if any
	Fields     map[string][]string // Validation errors keyed by field
}

// Error returns the user-facing message following the extraction precedence:
// explicit message, first field error, generic fallback.
func (e *APIError) Error() string {
	if m := e.UserMessage(); m != "" {
		return m
	}
	return GenericErrorMessage
}

// UserMessage extracts the best available user-facing message, or "" when
// the error carries none.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if msg := firstFieldError(e.Fields); msg != "" {
		return msg
	}
	return ""
}

// IsValidation reports whether the server rejected specific fields
func (e *APIError) IsValidation() bool {
	return len(e.Fields) > 0
}

// firstFieldError returns the first message of the first field in sorted key
// order. JSON object order is not preserved by Go maps, so sorting keeps the
// surfaced message deterministic.
func firstFieldError(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			return fields[k][0]
		}
	}
	return ""
}

// IsRetryable checks if an error is a transient transport condition worth
// retrying. Server-reported business and validation errors are never retried.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 502 || apiErr.StatusCode == 503 || apiErr.StatusCode == 504
	}
	return errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrTimeout)
}

// IsUnauthenticated checks if an error represents a missing or rejected session
func IsUnauthenticated(err error) bool {
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// UserMessage extracts a user-facing message from any error. APIErrors use
// the server-provided precedence; everything else falls back to the generic
// message so raw transport detail never reaches the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if m := apiErr.UserMessage(); m != "" {
			return m
		}
	}
	return GenericErrorMessage
}
