package model

import (
	"errors"
	"fmt"
)

// APIError is the normalized failure of a backend call. Message is the only
// part surfaced to the user; Status, Op and Err are kept for logging.
type APIError struct {
	Status  int    `json:"-"`
	Op      string `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"` // transport cause, when there was no HTTP reply
}

func (e *APIError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the transport cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an APIError for op with the given status and message.
func NewAPIError(op string, status int, message string) *APIError {
	return &APIError{Op: op, Status: status, Message: message}
}

// MessageOf extracts the display message from err. APIErrors yield their
// message; anything else (or an empty message) yields fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status carried by an APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// InvalidTransitionError is returned when a multi-step flow is driven out of order.
type InvalidTransitionError struct {
	Flow string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s → %s", e.Flow, e.From, e.To)
}
