// Package models contains domain types for the log sharing service.
package models

// Level is the severity class assigned to a single log line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
)

// LogEntry is one parsed, classified line of a stored log.
// Entries are derived from LogRecord.Body on every analyzed read and never persisted.
type LogEntry struct {
	LineNumber   int    `json:"lineNumber" msgpack:"n"`
	Level        Level  `json:"level" msgpack:"l"`
	RawText      string `json:"rawText" msgpack:"r"`
	RenderedText string `json:"renderedText" msgpack:"h"` // escaped markup with formatting spans
}

// IsError reports whether the entry was classified as an error line.
func (e LogEntry) IsError() bool {
	return e.Level == LevelError
}

// Entries is the ordered result of parsing one log.
type Entries []LogEntry

// ErrorCount returns the number of error-level entries.
func (es Entries) ErrorCount() int {
	n := 0
	for _, e := range es {
		if e.IsError() {
			n++
		}
	}
	return n
}

// Line returns the entry with the given 1-based line number.
func (es Entries) Line(n int) (LogEntry, bool) {
	if n < 1 || n > len(es) {
		return LogEntry{}, false
	}
	return es[n-1], true
}
