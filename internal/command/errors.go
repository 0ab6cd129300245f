// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"errors"
	"fmt"
)

// ErrorKind classifies command failures for reporting and testing.
type ErrorKind int

const (
	KindMissingParameter ErrorKind = iota + 1
	KindInvalidParameterFormat
	KindUnknownCommand
	KindPreconditionViolated
	KindAlreadyExists
	KindNothingToOperateOn
	KindExternalSdkError
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingParameter:
		return "MissingParameter"
	case KindInvalidParameterFormat:
		return "InvalidParameterFormat"
	case KindUnknownCommand:
		return "UnknownCommand"
	case KindPreconditionViolated:
		return "PreconditionViolated"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindNothingToOperateOn:
		return "NothingToOperateOn"
	case KindExternalSdkError:
		return "ExternalSdkError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a structured command failure. Handlers return it; the executor
// formats it once through the Reporter.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // Underlying SDK or I/O error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels (errors with an empty message), so
// errors.Is(err, ErrMissingParameter) holds for every missing parameter error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrMissingParameter       = &Error{Kind: KindMissingParameter}
	ErrInvalidParameterFormat = &Error{Kind: KindInvalidParameterFormat}
	ErrUnknownCommand         = &Error{Kind: KindUnknownCommand}
	ErrPreconditionViolated   = &Error{Kind: KindPreconditionViolated}
	ErrAlreadyExists          = &Error{Kind: KindAlreadyExists}
	ErrNothingToOperateOn     = &Error{Kind: KindNothingToOperateOn}
	ErrExternalSdk            = &Error{Kind: KindExternalSdkError}
)

// KindOf returns the kind of a command error, or 0 for foreign errors.
func KindOf(err error) ErrorKind {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return 0
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func MissingParameter(name string) *Error {
	return newError(KindMissingParameter, "No required %q parameter present", name)
}

func InvalidParameter(format string, args ...any) *Error {
	return newError(KindInvalidParameterFormat, format, args...)
}

func UnknownCommand(format string, args ...any) *Error {
	return newError(KindUnknownCommand, format, args...)
}

func PreconditionViolated(format string, args ...any) *Error {
	return newError(KindPreconditionViolated, format, args...)
}

func AlreadyExists(format string, args ...any) *Error {
	return newError(KindAlreadyExists, format, args...)
}

func NothingToOperateOn(format string, args ...any) *Error {
	return newError(KindNothingToOperateOn, format, args...)
}

// SdkError wraps an opaque SDK failure; the raw detail is kept for display.
func SdkError(err error, format string, args ...any) *Error {
	e := newError(KindExternalSdkError, format, args...)
	e.Err = err
	return e
}
