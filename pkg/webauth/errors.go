package webauth

import (
	"errors"
	"fmt"
)

// Flow errors
var (
	ErrInvalidAuthorizeURL = errors.New("invalid authorize url")
	ErrMissingClientID     = errors.New("missing client id")
	ErrPendingNotFound     = errors.New("pending authorization not found")
	ErrStateMismatch       = errors.New("received state does not match the issued one")
	ErrUnknownProvider     = errors.New("unknown provider kind")
	ErrUnknownNonceSource  = errors.New("unknown nonce source")
)

// ConfigurationError is returned before any browser hand-off when the
// coordinator cannot build an authorize URI. It is never retried.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthorizeError carries the error code the identity provider put in the
// redirect. It is the cause handed to OnFailure for provider failures.
type AuthorizeError struct {
	Code string
}

func (e *AuthorizeError) Error() string {
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// ExchangeError wraps a failed authorization code exchange.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("code exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
