package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message. It's a thin wrapper around the
// standard library so that callers only need to import this package.
func New(msg string) error {
	return errors.New(msg)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// contextError annotates an error with a short description of what was being
// done when the error occurred. The description should read like a verb phrase
// (e.g. "read file"), so that nested contexts print as a trace:
// "prepare backup: copy \"notes\": open source: permission denied".
type contextError struct {
	context string
	cause   error
}

// WithContext wraps `err` with the given context. It returns nil if `err` is
// nil so that it can be used directly in return statements.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{context: context, cause: err}
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// RootCause returns the innermost error wrapped by WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// FriendlyError is an error whose message is meant to be shown directly to
// the user, without any of the wrapping context.
type FriendlyError struct {
	template string
	args     []interface{}
}

// NewFriendlyError creates a FriendlyError. The arguments are formatted
// lazily with fmt.Sprintf.
func NewFriendlyError(template string, args ...interface{}) error {
	return FriendlyError{template: template, args: args}
}

func (err FriendlyError) Error() string {
	return err.FriendlyMessage()
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return fmt.Sprintf(err.template, err.args...)
}

// FriendlyMessager is implemented by errors that carry a message meant for
// the user, such as FriendlyError.
type FriendlyMessager interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the friendly message of `err`'s root cause if
// it has one. Otherwise, it returns the full error string.
func GetPrintableMessage(err error) string {
	if friendly, ok := RootCause(err).(FriendlyMessager); ok {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
