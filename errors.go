// Package xio provides ES2022-flavored error types with cause chain support.
package xio

import (
	"errors"
	"fmt"
)

// PanicError wraps a panic value recovered from the goroutine running a
// task's function.
type PanicError struct {
	// Value is the recovered panic value (may be any type, including error).
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("xio: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As] for error matching
// through the cause chain.
//
// If the panic Value is not an error (e.g., a string or other type),
// returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AggregateError wraps more than one error under a single cause chain.
// The runtime itself never constructs one: a secondary failure raised while
// a scope unwinds is dropped in favor of the original failure (G5).
type AggregateError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "aggregate error: (empty)"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("aggregate error: %d errors occurred", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n\t" + err.Error()
	}
	return msg
}

// AggregateErrorCause returns the first error in the Errors slice, if any.
//
// Returns nil if Errors is empty.
func (e *AggregateError) AggregateErrorCause() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap returns the errors slice for multi-error unwrapping (Go 1.20+).
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Is implements custom error matching for AggregateError.
// Returns true if target is an AggregateError (regardless of contents).
// Matching against the contained errors is done by errors.Is itself,
// through Unwrap.
func (e *AggregateError) Is(target error) bool {
	var aggTarget *AggregateError
	return errors.As(target, &aggTarget)
}

// TypeError represents a type error, similar to JavaScript's TypeError.
// It is available for argument validation; the runtime's own functions
// never return it (Ctx.Read and Ctx.Sleep, for example, do not validate
// their arguments).
type TypeError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Message == "" {
		return "type error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TypeError) Unwrap() error {
	return e.Cause
}

// RangeError represents a range error, similar to JavaScript's RangeError.
type RangeError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Message == "" {
		return "range error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *RangeError) Unwrap() error {
	return e.Cause
}

// TimeoutError is the failure kind surfaced when a [Timeout] scope's timer
// elapses before the scope body completes (spec §7, scenario S6).
type TimeoutError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "operation timed out"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// cancelledError is the sentinel failure kind injected into a task's frame
// to request cooperative shutdown (spec §3 "CancelledError"). It is never
// surfaced outside the runtime: a task that lets it escape terminates
// silently (Task.resume, priority 1), and TaskGroup treats it the same way
// for children. It is unexported because user code is only ever meant to
// observe it via errors.Is against the package-level Cancelled sentinel.
type cancelledError struct {
	// reason is optional context recorded by the canceller, surfaced only
	// through Error() for diagnostics; it never changes cancellation
	// semantics.
	reason any
}

// Cancelled is the sentinel that [errors.Is] matches against any
// cancellation failure injected by this package.
var Cancelled = &cancelledError{}

func (e *cancelledError) Error() string {
	if e.reason == nil {
		return "xio: task cancelled"
	}
	return fmt.Sprintf("xio: task cancelled: %v", e.reason)
}

func (e *cancelledError) Is(target error) bool {
	_, ok := target.(*cancelledError)
	return ok
}

// WrapError wraps an error with a message and optional cause chain.
//
// The result satisfies errors.Is(result, cause) == true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
