package filter

import "fmt"

// SyntaxError is a lex or parse error with a byte offset into the
// source expression.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// BindError is a semantic error found while resolving an expression
// against a schema: unknown fields, mistyped operands, bad call
// signatures.
type BindError struct {
	Offset  int
	Message string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind error at offset %d: %s", e.Offset, e.Message)
}

func syntaxErrf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func bindErrf(offset int, format string, args ...any) error {
	return &BindError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
