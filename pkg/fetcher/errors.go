package fetcher

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetch executor.
var (
	// ErrMissingEndpoint is returned when an executor is constructed
	// without a service endpoint.
	ErrMissingEndpoint = errors.New("service endpoint is required")

	// ErrContractViolation is returned when a response cannot be
	// interpreted: undecodable body, missing item list, or a zero-item
	// page that does not signal exhaustion.
	ErrContractViolation = errors.New("service contract violation")
)

// ErrorClass categorizes fetch failures.
type ErrorClass string

const (
	// ErrorClassTransport covers network failures and non-2xx responses.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassContract covers responses the extractor cannot interpret.
	ErrorClassContract ErrorClass = "contract"
)

// ServiceError represents a failed fetch with additional context.
type ServiceError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
