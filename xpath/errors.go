package xpath

import (
	"errors"
	"fmt"
)

var (
	ErrType        = errors.New("invalid type")
	ErrCast        = errors.New("value can not be cast to target type")
	ErrSyntax      = errors.New("invalid syntax")
	ErrZero        = errors.New("division by zero")
	ErrContext     = errors.New("context item is absent")
	ErrImplemented = errors.New("not implemented")
)

const (
	CodeSyntax     = "XPST0003"
	CodeUndefined  = "XPST0008"
	CodeStaticType = "XPTY0004"
	CodeType       = "XPTY0004"
	CodeCast       = "FORG0001"
	CodeContext    = "XPDY0002"
	CodeDivZero    = "FOAR0001"
	CodeCollation  = "FOCH0002"
)

// StaticError is raised by the analysis phases and is terminal for the
// compilation of the expression it was raised on.
type StaticError struct {
	Code  string
	Cause string
	Position
}

func (e *StaticError) Error() string {
	if e.Position.Zero() {
		return fmt.Sprintf("[%s] %s", e.Code, e.Cause)
	}
	return fmt.Sprintf("[%s] %s at %s", e.Code, e.Cause, e.Position)
}

func staticError(code, cause string) error {
	return &StaticError{
		Code:  code,
		Cause: cause,
	}
}

func staticErrorf(code, pattern string, args ...any) error {
	return staticError(code, fmt.Sprintf(pattern, args...))
}

// DynamicError is raised during evaluation and propagates synchronously
// through the iterator chain. Target is set when a value conversion
// failed, naming the type the conversion was attempted to.
type DynamicError struct {
	Code   string
	Cause  string
	Target *AtomicType
	Position
}

func (e *DynamicError) Error() string {
	cause := e.Cause
	if e.Target != nil {
		cause = fmt.Sprintf("%s (target type %s)", cause, e.Target)
	}
	if e.Position.Zero() {
		return fmt.Sprintf("[%s] %s", e.Code, cause)
	}
	return fmt.Sprintf("[%s] %s at %s", e.Code, cause, e.Position)
}

func dynamicError(code, cause string) error {
	return &DynamicError{
		Code:  code,
		Cause: cause,
	}
}

func dynamicErrorf(code, pattern string, args ...any) error {
	return dynamicError(code, fmt.Sprintf(pattern, args...))
}

func conversionError(value any, target *AtomicType) error {
	return &DynamicError{
		Code:   CodeCast,
		Cause:  fmt.Sprintf("%v can not be converted", value),
		Target: target,
	}
}

// attach adds a source position to an error that does not already carry
// one. The innermost frame wins: once a position is set it is kept as the
// error travels outward.
func attach(err error, pos Position) error {
	if err == nil || pos.Zero() {
		return err
	}
	switch e := err.(type) {
	case *StaticError:
		if e.Position.Zero() {
			e.Position = pos
		}
	case *DynamicError:
		if e.Position.Zero() {
			e.Position = pos
		}
	}
	return err
}
