package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so handlers can map it to a status
// code without inspecting message text.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConfig     Kind = "config"
	KindParse      Kind = "parse"
	KindExternal   Kind = "external"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Config flags missing reference data. A deployment defect, fatal to the
// operation but not to the process.
func Config(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

func Parse(msg string, err error) *Error {
	return &Error{Kind: KindParse, Msg: msg, Err: err}
}

func External(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Msg: msg, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
