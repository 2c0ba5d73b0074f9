// Package remote holds what the remote adapters share: the error type they
// report failures with and the classification that decides whether a failure
// means "the service said no" or "the service could not be reached".
package remote

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by adapters constructed without the settings
// they need to reach the service.
var ErrNotConfigured = errors.New("remote service not configured")

// Error is a failure reported by a remote adapter. Code follows the provider
// convention, e.g. "auth/email-already-in-use".
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Code != "":
		return e.Code
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "remote error"
}

func (e *Error) Unwrap() error { return e.Err }

// DomainError is an authoritative rejection by a reachable remote service.
// Message is ready to be shown to the user.
type DomainError struct {
	Kind    DomainKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }
