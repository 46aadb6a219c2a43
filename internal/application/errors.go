package application

import (
	"errors"
	"fmt"
)

// Code classifies an Error for the transport layer.
type Code int

const (
	CodeUnauthenticated Code = iota + 1
	CodeForbidden
	CodeNotFound
	CodeBadRequest
	CodeConflict
)

// Error is a failure the caller can act on. Anything else that escapes a
// service is an unexpected persistence or infrastructure failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func Unauthenticated(msg string) *Error { return &Error{Code: CodeUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Code: CodeForbidden, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Code: CodeConflict, Message: msg} }

func BadRequest(format string, args ...any) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of err, or 0 when err is not an *Error.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return 0
}

// Authentication gate messages. The three verification failures share one
// message so callers cannot tell them apart.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgTokenFailed  = "Not authorized, token failed"
	MsgUserNotFound = "Not authorized, user not found"
)

var (
	ErrInvalidCredentials = Unauthenticated("Invalid email or password")
	ErrUserExists         = Conflict("User already exists")
	ErrUserNotFound       = NotFound("User not found")
)
