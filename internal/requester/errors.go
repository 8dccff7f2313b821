package requester

import (
	"errors"
	"fmt"
)

// ErrNoToken indicates a request needed a bearer token and none is
// stored. The request is never sent.
var ErrNoToken = errors.New("no access token available")

// TransportError wraps a failure that happened before any response was
// obtained.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

// DecodeError wraps a successful response whose body failed to parse
// into the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
