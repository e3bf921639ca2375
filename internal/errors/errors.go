package errors

import (
	"errors"
	"time"
)

// Caller errors (4xx)
var (
	ErrValidation       = errors.New("validation failed")
	ErrEventNotFound    = errors.New("event not found")
	ErrSoldOut          = errors.New("event is sold out")
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrMissingSignature = errors.New("no signature provided")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrSpam             = errors.New("spam detected")
	ErrRateLimited      = errors.New("too many requests")
)

// Upstream errors (5xx)
var (
	ErrBookingCreate   = errors.New("failed to create booking")
	ErrPaymentProvider = errors.New("payment provider error")
	ErrSendFailed      = errors.New("failed to send message")
)

// ErrMalformedEvent marks a webhook whose signature verified but whose payload
// could not be decoded. It is acknowledged, never retried.
var ErrMalformedEvent = errors.New("malformed webhook event")

// ValidationError is a caller error whose message is shown as is
type ValidationError struct {
	Message string
}

func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RateLimitError tells the caller when to retry
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// ProviderError carries a message from the payment provider that may be shown to the caller
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrPaymentProvider.Error()
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPaymentProvider}
	}
	return []error{ErrPaymentProvider, e.Err}
}
