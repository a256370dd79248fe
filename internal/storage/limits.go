package storage

import (
	"bytes"
	"fmt"
)

// Limits bound what Create accepts.
type Limits struct {
	MaxBytes int
	MaxLines int
}

// DefaultLimits mirrors the public service: 10 MiB and 25k lines.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes: 10 * 1024 * 1024,
		MaxLines: 25000,
	}
}

// Check returns ErrEmpty, ErrTooLarge or ErrTooManyLines for a body that
// violates the limits. Whitespace-only bodies count as empty.
func (l Limits) Check(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmpty
	}
	if l.MaxBytes > 0 && len(body) > l.MaxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(body), l.MaxBytes)
	}
	if l.MaxLines > 0 {
		if n := CountLines(body); n > l.MaxLines {
			return fmt.Errorf("%w: %d lines, limit %d", ErrTooManyLines, n, l.MaxLines)
		}
	}
	return nil
}

// CountLines counts lines the way the line parser splits them: a final
// terminator does not start an extra line.
func CountLines(body []byte) int {
	if len(body) == 0 {
		return 0
	}
	n := bytes.Count(body, []byte{'\n'})
	if body[len(body)-1] != '\n' {
		n++
	}
	return n
}
