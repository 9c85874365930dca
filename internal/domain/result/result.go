// Package result holds the outcome type returned by every command handler.
package result

import "fmt"

// Error is a machine-readable failure description.
// Code is dot-namespaced (e.g. "auth.email_already_in_use"); Field is only set
// on field-level validation errors.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewError builds an Error that is not tied to an input field.
func NewError(code, message string) Error {
	return Error{Code: code, Message: message}
}

// FieldError builds a validation Error for a single input field.
func FieldError(field, code, message string) Error {
	return Error{Code: code, Message: message, Field: field}
}

func (e Error) String() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return e.Code + ": " + e.Message
}

// InternalError is what callers see for any infrastructure failure.
var InternalError = NewError("internal.unexpected", "An unexpected error occurred.")

// Result is either a success holding a value or a failure holding at least one Error.
//
// Result must only be built through Success and Failure.
type Result[T any] struct {
	ok     bool
	value  T
	errors []Error
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Failure wraps one or more errors. Calling it without errors is a programming error.
func Failure[T any](errs ...Error) Result[T] {
	if len(errs) == 0 {
		panic("result: Failure requires at least one error")
	}
	cp := make([]Error, len(errs))
	copy(cp, errs)
	return Result[T]{errors: cp}
}

const zeroResult = "result: zero Result; build it with Success or Failure"

func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the success value. It panics on a failure.
func (r Result[T]) Value() T {
	if !r.ok {
		if len(r.errors) == 0 {
			panic(zeroResult)
		}
		panic(fmt.Sprintf("result: Value called on failure %s", r.errors[0]))
	}
	return r.value
}

// Err returns the first error of a failure. It panics on a success.
func (r Result[T]) Err() Error {
	if r.ok {
		panic("result: Err called on success")
	}
	if len(r.errors) == 0 {
		panic(zeroResult)
	}
	return r.errors[0]
}

// Errors returns every error of a failure. It panics on a success.
func (r Result[T]) Errors() []Error {
	if r.ok {
		panic("result: Errors called on success")
	}
	if len(r.errors) == 0 {
		panic(zeroResult)
	}
	out := make([]Error, len(r.errors))
	copy(out, r.errors)
	return out
}

// Recast carries the errors of a failure over to a Result of another type.
// It panics on a success.
func Recast[U, T any](r Result[T]) Result[U] {
	return Failure[U](r.Errors()...)
}
