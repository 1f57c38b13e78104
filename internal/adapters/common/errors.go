package common

import (
	"errors"
	"fmt"
)

// ErrTransient and ErrPermanent are sentinel errors adapters use when
// classifying dispatch failures. A transient failure produced no usable reply
// and may succeed if the request is submitted again; a permanent one never will.
var (
	ErrTransient = errors.New("transient error")
	ErrPermanent = errors.New("permanent error")
)

// WrapTransient annotates an error so callers can detect transient failures.
// The cause stays reachable through errors.Is.
func WrapTransient(err error) error {
	if err == nil {
		return ErrTransient
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// WrapPermanent annotates an error as permanent.
func WrapPermanent(err error) error {
	if err == nil {
		return ErrPermanent
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}
