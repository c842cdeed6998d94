package publisher

import (
	"errors"
	"fmt"
)

// ValidationError means the caller handed an adapter something it can never
// publish (typically missing media on a network that mandates it). It is
// surfaced synchronously and never retried.
type ValidationError struct {
	Network string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Network, e.Reason)
}

// RemoteError is a non-2xx answer from the platform itself.
type RemoteError struct {
	Network    string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Network, e.StatusCode, e.Body)
}

// TransportError means the platform (or an auxiliary backend) could not be
// reached at all.
type TransportError struct {
	Network string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Network, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is terminal for the task layer: retrying
// will never change the outcome.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
