// Package apperr defines the error taxonomy shared by the vision pipeline.
// Every failure that reaches the HTTP layer is an *Error carrying a kind and
// the status code it maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for API consumers.
type Kind string

const (
	// KindValidation marks malformed or missing input. Never retried.
	KindValidation Kind = "validation"
	// KindModel marks an unavailable runtime or a failed invocation.
	KindModel Kind = "model"
	// KindSystem marks an unexpected internal failure.
	KindSystem Kind = "system"
)

type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	// Status overrides the default status for Kind when non-zero.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode reports the HTTP status the error should be answered with.
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails returns a copy of e with key set in its details.
func (e *Error) WithDetails(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Model builds a model error answered with 500.
func Model(msg string, err error) *Error {
	return &Error{Kind: KindModel, Message: msg, Err: err}
}

// Unavailable builds a model error answered with 503.
func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindModel, Message: msg, Err: err, Status: http.StatusServiceUnavailable}
}

// Busy builds a system error answered with 429.
func Busy(msg string) *Error {
	return &Error{Kind: KindSystem, Message: msg, Status: http.StatusTooManyRequests}
}

func System(msg string, err error) *Error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// From returns err as an *Error. Errors outside the taxonomy become system
// errors whose detail carries the original text.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return System(err.Error(), err).WithDetails("error", err.Error())
}

// KindOf reports the kind of err, KindSystem for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindSystem
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
