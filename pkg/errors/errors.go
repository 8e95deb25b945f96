// Package errors defines the coded errors shared by the CLI and the HTTP API.
//
// Every error a user can trigger carries a [Code]: the CLI prints its
// message, the server maps it to a status and returns the code in the body.
//
//	err := errors.New(errors.ErrCodeInvalidInput, "starting value must be positive, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
// The package shadows the standard library name; import that as stderrors
// where both are needed.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for programs; it never changes once published.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// 3n+1 does not fit in 64 bits.
	ErrCodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a code with a message meant for users. Cause, when set, is
// kept for logs and errors.Is but left out of [UserMessage].
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the text to show a user: the message of a coded
// error without code or cause, otherwise err.Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by bad input rather than a
// failure inside the program. The HTTP API maps these to 400 responses.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidVizType, ErrCodeArithmeticOverflow:
		return true
	}
	return false
}
