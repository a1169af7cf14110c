package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidExpression is returned when the text is not a valid
	// expression in the variable z
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrUnsupportedOperator is returned when the expression parses but uses
	// an operator or function that can't be lowered to complex arithmetic
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// SyntaxError carries the byte offset of the offending token. It unwraps to
// ErrInvalidExpression or ErrUnsupportedOperator.
type SyntaxError struct {
	Pos  int
	Msg  string
	kind error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.kind, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.kind
}

func invalid(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), kind: ErrInvalidExpression}
}

func unsupported(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), kind: ErrUnsupportedOperator}
}
