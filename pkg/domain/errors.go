package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnsupportedCurrency is returned when a currency is not in the
	// currency table or not accepted by the payment provider
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrBelowMinimum is returned when an order amount is below the
	// currency's minimum order value
	ErrBelowMinimum = fmt.Errorf("%w: amount below minimum order", ErrValidation)

	// ErrAuthFailure is returned when the provider token exchange fails
	ErrAuthFailure = errors.New("payment provider authentication failed")
	// ErrCredentialsMissing is returned when the provider client id or secret
	// is not configured
	ErrCredentialsMissing = errors.New("payment provider credentials not configured")

	// ErrUpstream is returned when the provider answers a non-2xx status
	ErrUpstream = errors.New("payment provider error")
	// ErrTransport is returned when the provider could not be reached
	ErrTransport = errors.New("payment provider unreachable")

	// ErrMissingApprovalURL is returned when a created order has no approval link
	ErrMissingApprovalURL = errors.New("provider order has no approval url")
	// ErrCaptureIncomplete is returned when a capture succeeded at the HTTP
	// level but carried no capture id
	ErrCaptureIncomplete = errors.New("capture returned no transaction id")
)

// AuthError describes a failed token exchange.
// Status is zero when the exchange failed before a response was received.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", ErrAuthFailure, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrAuthFailure, e.Status, e.Body)
}

// Unwrap exposes both the sentinel and the transport cause.
func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuthFailure}
	}
	return []error{ErrAuthFailure, e.Err}
}

// UpstreamError is a non-2xx answer from the payment provider.
type UpstreamError struct {
	Op      string
	Status  int
	Body    string
	Message string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, msg)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// ValidationErrorf builds an error wrapping ErrValidation.
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
