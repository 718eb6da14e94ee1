package dbmodel

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/maxshaw/dbmodel/qb"
)

type Code int

const (
	CodeDriverUnsupported Code = 3001
	CodeConfigMissing     Code = 3002
	CodeConnect           Code = 3003
	CodeConfigNotFound    Code = 3004
	CodeEmptySQL          Code = 3006
	CodePrepare           Code = 3007
	CodeUsage             Code = 4001
)

var (
	ErrDriverUnsupported = &Error{Code: CodeDriverUnsupported, Msg: "database driver is not supported"}
	ErrConfigMissing     = &Error{Code: CodeConfigMissing, Msg: "database config is missing"}
	ErrConnect           = &Error{Code: CodeConnect, Msg: "cannot connect to database"}
	ErrConfigNotFound    = &Error{Code: CodeConfigNotFound, Msg: "database config is not defined"}
	ErrEmptySQL          = &Error{Code: CodeEmptySQL, Msg: "sql statement is empty"}
	ErrPrepare           = &Error{Code: CodePrepare, Msg: "cannot prepare statement"}
	ErrUsage             = &Error{Code: CodeUsage, Msg: "invalid builder usage"}
)

// Error carries one of the Code values. errors.Is matches on the code, so
// errors.Is(err, ErrEmptySQL) holds for any *Error with CodeEmptySQL.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func newError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dbmodel [%d]: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("dbmodel [%d]: %s: %v", e.Code, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the Code of the first *Error in err's chain, or 0.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// usage maps qb rendering failures to CodeUsage or CodeDriverUnsupported and
// leaves everything else untouched.
func usage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, qb.ErrUnsupported) {
		return newError(CodeDriverUnsupported, err, "statement not supported by driver")
	}
	if errors.Is(err, qb.ErrUsage) {
		return newError(CodeUsage, err, "invalid builder usage")
	}
	return err
}
