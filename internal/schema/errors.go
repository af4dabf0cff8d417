package schema

import (
	"errors"
	"fmt"
)

// ErrConflictingEnum is returned when one enum name is declared twice with
// different members.
var ErrConflictingEnum = errors.New("conflicting enum declarations")

// IntrospectionError wraps a failed catalog query. It is fatal: inspection
// never returns a partial result.
type IntrospectionError struct {
	Op  string
	Err error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("introspection failed: %s: %v", e.Op, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}

func introspectionErr(op string, err error) error {
	return &IntrospectionError{Op: op, Err: err}
}
