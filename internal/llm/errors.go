package llm

import (
	"fmt"
	"strings"
)

// ServiceError reports a failure starting or completing a call to the model
// service, including network and authentication failures.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("model service %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// StreamError reports a streamed reply that broke mid-consumption. Received
// is the number of characters accumulated before the break; callers discard
// that partial text.
type StreamError struct {
	Received int
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("response stream interrupted after %d chars: %v", e.Received, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// streamFailure classifies a broken stream: before any text arrived it is a
// plain service failure, after text it is an interrupted stream.
func streamFailure(op string, received int, err error) error {
	if received > 0 {
		return &StreamError{Received: received, Err: err}
	}
	return &ServiceError{Op: op, Err: err}
}

func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "401") || strings.Contains(msg, "authentication") || strings.Contains(msg, "invalid_api_key")
}
