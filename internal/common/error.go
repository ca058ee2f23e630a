package common

import (
	"fmt"
	"strings"

	"hlatarget/internal/dbg"
)

// Error represents the library error object.
// Code identifies the failure class; Message carries the detail.
type Error struct {
	Code    dbg.Err
	Sev     dbg.ErrSeverity
	Message string
}

// Sentinel errors for use with errors.Is. Matching compares codes only.
var (
	ErrFail            = NewError(dbg.ErrSevError, dbg.ErrFail)
	ErrTargetFailure   = NewError(dbg.ErrSevError, dbg.ErrTargetFailure)
	ErrNotHalted       = NewError(dbg.ErrSevError, dbg.ErrTargetNotHalted)
	ErrInvalidArgument = NewError(dbg.ErrSevError, dbg.ErrCommandSyntax)
	ErrNotSupported    = NewError(dbg.ErrSevError, dbg.ErrCommandNotFound)
)

func NewError(sev dbg.ErrSeverity, code dbg.Err) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
	}
}

func NewErrorMsg(sev dbg.ErrSeverity, code dbg.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Message: msg,
	}
}

// Errorf builds an error-severity Error with a formatted message.
func Errorf(code dbg.Err, format string, args ...interface{}) *Error {
	return NewErrorMsg(dbg.ErrSevError, code, fmt.Sprintf(format, args...))
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case dbg.ErrSevNone:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	case dbg.ErrSevError:
		sb.WriteString("ERROR:")
	case dbg.ErrSevWarn:
		sb.WriteString("WARN :")
	case dbg.ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", e.Code))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of err if it is an *Error, dbg.OK for nil and
// dbg.ErrFail for any other error.
func CodeOf(err error) dbg.Err {
	if err == nil {
		return dbg.OK
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return dbg.ErrFail
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[dbg.Err]errDesc{
	dbg.OK:                 {"ERROR_OK", "No Error."},
	dbg.ErrFail:            {"ERROR_FAIL", "General failure."},
	dbg.ErrTargetFailure:   {"ERROR_TARGET_FAILURE", "Communication failure with target."},
	dbg.ErrTargetNotHalted: {"ERROR_TARGET_NOT_HALTED", "Target not halted."},
	dbg.ErrCommandSyntax:   {"ERROR_COMMAND_SYNTAX_ERROR", "Invalid argument."},
	dbg.ErrCommandNotFound: {"ERROR_COMMAND_NOTFOUND", "Operation not supported."},
	dbg.ErrLast:            {"ERROR_LAST", "No error - error code end marker"},
}
