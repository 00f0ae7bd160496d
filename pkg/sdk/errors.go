package usagerelay

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when the server answers with a body that is not a JSON object.
var ErrMalformedResponse = errors.New("usagerelay: malformed response")

// StatusError reports a non-200 answer from the relay.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("usagerelay: unexpected status %d", e.Code)
}
