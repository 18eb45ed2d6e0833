package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string

	cause error
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap keeps the underlying cause for logging while exposing only the code
// and message to callers.
func Wrap(code Code, cause error, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...), cause: cause}
}

func (e Error) Error() string {
	return e.Message
}

// ErrorCode and ErrorData let JSON-RPC servers forward the code to callers.
func (e Error) ErrorCode() int {
	return int(e.Code)
}

func (e Error) ErrorData() any {
	return e.Code.String()
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is reports whether any error in err's chain is an errorx.Error with the
// given code.
func Is(err error, code Code) bool {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code == code
	}

	return false
}

// CodeOf returns the code of err, or UpdateFailed when err is not an
// errorx.Error.
func CodeOf(err error) Code {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code
	}

	return UpdateFailed
}
