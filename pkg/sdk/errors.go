package sdk

import (
	"errors"
	"fmt"
	"time"

	"github.com/giftology/radar/internal/engine"
)

var (
	// ErrNotAuthorized is returned when an endpoint needs an auth code and the
	// session has none, or when the service rejected the one it had.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrTimeout matches any TransportError of kind timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrInvalidSecurityCode is returned for a verification code that is not
	// exactly six digits.
	ErrInvalidSecurityCode = errors.New("security code must be 6 digits")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrFlowState is returned when a verification step is attempted out of order.
	ErrFlowState = errors.New("verification step out of order")
	// ErrKeyNotFound is returned by session stores for absent or expired keys.
	ErrKeyNotFound = engine.ErrKeyNotFound
)

// Transport error kinds.
const (
	KindTimeout  = "timeout"
	KindNetwork  = "network"
	KindCanceled = "canceled"
)

// Error numbers reported for failures that never reached the service.
const (
	CodeNetwork = 100
	CodeTimeout = 408
)

// TransportError is a failure to obtain a response body at all.
type TransportError struct {
	Kind     string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Kind == KindTimeout {
		return fmt.Sprintf("%s: request timed out", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match timeouts.
func (e *TransportError) Is(target error) bool {
	return target == ErrTimeout && e.Kind == KindTimeout
}

// Code is the error number the failure is reported under.
func (e *TransportError) Code() int {
	if e.Kind == KindTimeout {
		return CodeTimeout
	}
	return CodeNetwork
}

// Message is the user-facing text for the failure.
func (e *TransportError) Message() string {
	if e.Kind == KindTimeout {
		return "Request timed out"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind + " error"
}

// ServiceError is an envelope whose Result was not success.
type ServiceError struct {
	Endpoint    string
	ErrorNumber int
	Message     string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.ErrorNumber != 0 {
		return fmt.Sprintf("%s: %s (error %d)", e.Endpoint, msg, e.ErrorNumber)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

// AuthorizationRequiredError is the setup endpoint asking the user to
// authorize the CRM integration at URL. Callers follow the link after Delay.
type AuthorizationRequiredError struct {
	URL     string
	Message string
	Delay   time.Duration
}

func (e *AuthorizationRequiredError) Error() string {
	return fmt.Sprintf("%s: authorize at %s", e.Message, e.URL)
}
