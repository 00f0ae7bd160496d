package domain

import (
	"errors"
	"strconv"
)

var (
	// ErrSessionExpired signals that upstream rejected the session cookie (401).
	ErrSessionExpired = errors.New("session expired")
	// ErrAccessDenied signals that upstream refused access to the organization (403).
	ErrAccessDenied = errors.New("access denied")
)

// StatusError is returned for any other non-200 upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "HTTP " + strconv.Itoa(e.Code)
}

// NewStatusError creates a StatusError for the given HTTP status code.
func NewStatusError(code int) error {
	return &StatusError{Code: code}
}

// TransportError wraps network, timeout and decode failures.
// Its message is the underlying error's message, unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a TransportError. Returns nil for a nil err.
func NewTransportError(err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Err: err}
}

// Outcome is the coarse classification of a fetch cycle, used for logs and metric labels.
type Outcome string

// Fetch outcome constants.
const (
	OutcomeSuccess        Outcome = "success"
	OutcomeSessionExpired Outcome = "session_expired"
	OutcomeAccessDenied   Outcome = "access_denied"
	OutcomeHTTPError      Outcome = "http_error"
	OutcomeTransportError Outcome = "transport_error"
)

// Classify maps a fetch error onto an Outcome. A nil error is a success;
// anything unrecognized is treated as a transport failure.
func Classify(err error) Outcome {
	var statusErr *StatusError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrSessionExpired):
		return OutcomeSessionExpired
	case errors.Is(err, ErrAccessDenied):
		return OutcomeAccessDenied
	case errors.As(err, &statusErr):
		return OutcomeHTTPError
	default:
		return OutcomeTransportError
	}
}
