// Package errors provides the structured error types used across grove.
//
// Errors carry stack traces via cockroachdb/errors and know how to attach
// themselves to zerolog events, so callers can log them structurally without
// unpacking fields by hand.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ValidationError reports a build configuration or input that fails the
// pre-build checks. Training never starts when one is returned.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("grove: validation failed for %q: %s (got: %v)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject adds the validation failure fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{Param: param, Reason: reason, Value: value})
}

// NotTrainedError is returned when a model is evaluated before training.
type NotTrainedError struct {
	Model  string
	Method string
}

func (e *NotTrainedError) Error() string {
	return fmt.Sprintf("grove: %s: model has no trees. Call Train() before %s()", e.Model, e.Method)
}

// MarshalZerologObject adds the model and method fields to a zerolog event.
func (e *NotTrainedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model", e.Model).
		Str("method", e.Method).
		Str("type", "NotTrainedError")
}

// NewNotTrainedError creates a NotTrainedError with a stack trace attached.
func NewNotTrainedError(model, method string) error {
	return errors.WithStack(&NotTrainedError{Model: model, Method: method})
}

// ModelFormatError reports a persisted model that cannot be decoded.
type ModelFormatError struct {
	Path   string
	Reason string
}

func (e *ModelFormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("grove: bad model format: %s", e.Reason)
	}
	return fmt.Sprintf("grove: bad model format in %s: %s", e.Path, e.Reason)
}

// MarshalZerologObject adds the persistence failure fields to a zerolog event.
func (e *ModelFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("reason", e.Reason).
		Str("type", "ModelFormatError")
}

// NewModelFormatError creates a ModelFormatError with a stack trace attached.
func NewModelFormatError(path, reason string) error {
	return errors.WithStack(&ModelFormatError{Path: path, Reason: reason})
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message, preserving its chain.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message, preserving its chain.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace at the point of the call.
func WithStack(err error) error {
	return errors.WithStack(err)
}
