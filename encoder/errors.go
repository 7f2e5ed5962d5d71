package encoder

import (
	"fmt"

	"github.com/fv1fab/fv1compile/parser"
)

// EncodingError gives an encoding failure its source-line context, mirroring
// how the graph compiler's diag package ties every problem back to a
// location rather than reporting a bare message.
type EncodingError struct {
	Statement *parser.Statement
	Message   string
	Wrapped   error
}

func (e *EncodingError) Error() string {
	if e.Statement == nil {
		if e.Wrapped != nil {
			return fmt.Sprintf("encoding error: %s: %v", e.Message, e.Wrapped)
		}
		return fmt.Sprintf("encoding error: %s", e.Message)
	}
	location := fmt.Sprintf("%s: ", e.Statement.Pos)
	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s", location, e.Message)
}

func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

func NewEncodingError(stmt *parser.Statement, message string) *EncodingError {
	return &EncodingError{Statement: stmt, Message: message}
}

func WrapEncodingError(stmt *parser.Statement, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EncodingError); ok {
		return err
	}
	return &EncodingError{Statement: stmt, Message: "failed to encode instruction", Wrapped: err}
}
