package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetwork indicates that the feed was unreachable or returned malformed data.
	ErrNetwork = errors.New("feed unavailable")

	// ErrService indicates that the language-model completion call failed.
	ErrService = errors.New("classifier service failed")

	// ErrParse indicates that a classifier reply did not match the expected format.
	ErrParse = errors.New("classifier reply malformed")

	// ErrDelivery indicates that a notification could not be delivered to a channel.
	ErrDelivery = errors.New("notification delivery failed")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NetworkError is returned by the feed client when the feed cannot be read.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("feed request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is makes every NetworkError match ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ServiceError is returned by a classifier client when the completion call fails.
// StatusCode is zero when no HTTP response was received (timeout, transport error).
type ServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is makes every ServiceError match ErrService.
func (e *ServiceError) Is(target error) bool { return target == ErrService }

// ParseError is returned when a classifier reply does not follow the line format.
// Reply holds the offending reply so it can be logged.
type ParseError struct {
	Reason string
	Reply  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse classifier reply: %s", e.Reason)
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DeliveryError is returned by a notifier when a POST fails or is rejected.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deliver to channel %q: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("deliver to channel %q: status %d: %s", e.Channel, e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Is makes every DeliveryError match ErrDelivery.
func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
