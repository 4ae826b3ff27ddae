package errors

import (
	"errors"
	"fmt"
)

// Type classifies pipeline errors. Every fatal failure the pipeline can
// produce falls into one of these; anything else is wrapped as TypeIO.
type Type string

const (
	// TypeConfig covers unregistered statement kinds, invalid geometry,
	// and ambiguous ratio input labels.
	TypeConfig Type = "config"
	// TypeRange covers configured row/column ranges that fall outside a
	// sheet's populated extent.
	TypeRange Type = "range"
	// TypePeriodMismatch covers statements that disagree on the period
	// sequence at merge time.
	TypePeriodMismatch Type = "period_mismatch"
	// TypeIO covers workbook open/save and sheet access failures.
	TypeIO Type = "io"
)

// Error is a typed pipeline error carrying the offending sheet and label
// so fatal failures can report exactly what geometry or input broke.
type Error struct {
	Type    Type
	Sheet   string
	Label   string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	switch {
	case e.Sheet != "" && e.Label != "":
		return fmt.Sprintf("[%s] sheet %s, label %q: %s", e.Type, e.Sheet, e.Label, e.Message)
	case e.Sheet != "":
		return fmt.Sprintf("[%s] sheet %s: %s", e.Type, e.Sheet, e.Message)
	case e.Label != "":
		return fmt.Sprintf("[%s] label %q: %s", e.Type, e.Label, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *Error {
	return &Error{Type: TypeConfig, Message: message}
}

// NewConfigErrorf creates a configuration error with a formatted message
func NewConfigErrorf(format string, args ...any) *Error {
	return &Error{Type: TypeConfig, Message: fmt.Sprintf(format, args...)}
}

// NewAmbiguousLabelError creates a configuration error for a ratio input
// label that resolves in more than one statement.
func NewAmbiguousLabelError(label string, message string) *Error {
	return &Error{Type: TypeConfig, Label: label, Message: message}
}

// NewRangeError creates a range error for the given sheet
func NewRangeError(sheet, message string) *Error {
	return &Error{Type: TypeRange, Sheet: sheet, Message: message}
}

// NewRangeErrorf creates a range error with a formatted message
func NewRangeErrorf(sheet, format string, args ...any) *Error {
	return &Error{Type: TypeRange, Sheet: sheet, Message: fmt.Sprintf(format, args...)}
}

// NewPeriodMismatchError creates a period mismatch error
func NewPeriodMismatchError(sheet, message string) *Error {
	return &Error{Type: TypePeriodMismatch, Sheet: sheet, Message: message}
}

// WrapIO wraps a workbook I/O failure
func WrapIO(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: TypeIO, Message: message, Cause: err}
}

// TypeOf returns the pipeline error type, or "" for foreign errors.
func TypeOf(err error) Type {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsType checks whether err is a pipeline error of the given type
func IsType(err error, t Type) bool {
	return TypeOf(err) == t
}
