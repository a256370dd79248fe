package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("log not found")
	ErrEmpty        = errors.New("log is empty")
	ErrTooLarge     = errors.New("log exceeds maximum length")
	ErrTooManyLines = errors.New("log exceeds maximum line count")
	ErrExhausted    = errors.New("no free identifier")
	ErrUnavailable  = errors.New("storage unavailable")
)

// OpError wraps a backend failure with the operation and identifier involved.
// It matches both ErrUnavailable and the underlying cause under errors.Is.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}
