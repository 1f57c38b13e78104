package rongcloud

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("rongcloud: transport failure")
	// ErrUnknownAction is returned by Invoke for names outside the catalog.
	ErrUnknownAction = errors.New("rongcloud: unknown action")
	// ErrInvalidAction reports an action with an empty name or malformed path.
	ErrInvalidAction = errors.New("rongcloud: invalid action")
	// ErrUnsupportedContentType reports a content type other than form or JSON.
	ErrUnsupportedContentType = errors.New("rongcloud: unsupported content type")
	// ErrUnsupportedValue reports a parameter value the encoders cannot represent.
	ErrUnsupportedValue = errors.New("rongcloud: unsupported parameter value")
	// ErrMissingCredentials is returned when no app key or secret is configured.
	ErrMissingCredentials = errors.New("rongcloud: app key and app secret are required")
	// ErrEntropy wraps a failure of the random source used for nonces.
	ErrEntropy = errors.New("rongcloud: random source unavailable")
)

// TransportError describes a request that produced no usable reply: the
// connection failed, the body could not be read, or the body was not JSON.
// It is never used for a well-formed reply with a non-200 code.
type TransportError struct {
	Action string
	URL    string
	// Status is the HTTP status when a response was received, zero otherwise.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rongcloud: %s (http %d): %v", e.Action, e.Status, e.Err)
	}
	return fmt.Sprintf("rongcloud: %s: %v", e.Action, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// StatusCode returns the HTTP status, zero when no response arrived.
func (e *TransportError) StatusCode() int {
	return e.Status
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
