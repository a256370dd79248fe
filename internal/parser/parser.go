// Package parser turns a raw log body into classified, display-ready entries.
package parser

import (
	"regexp"
	"strings"

	"github.com/logshare/backend/internal/models"
)

// levelRule pairs a level with the token patterns that select it.
type levelRule struct {
	level    models.Level
	patterns []*regexp.Regexp
}

// levelTokens builds the two patterns for a token alternation: a marker form
// (`/`, `: ` or `[` before, `]`, `:` or space after) that ignores case, and a
// bare form at line start or after whitespace that only accepts upper case.
func levelTokens(tokens string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:/|: |\[)(?:` + tokens + `)(?:\]|:|\s|$)`),
		regexp.MustCompile(`(?:^|\s)(?:` + tokens + `)(?:\]|:|\s|$)`),
	}
}

// levelRules are tested in order; the first hit wins.
var levelRules = []levelRule{
	{models.LevelError, levelTokens(`ERROR|ERR|FATAL|SEVERE`)},
	{models.LevelWarning, levelTokens(`WARNING|WARN`)},
	{models.LevelDebug, levelTokens(`DEBUG`)},
}

// Parse splits raw into lines and classifies each one. A final line terminator
// does not produce an empty trailing entry, and CRLF endings are normalized.
// Any input, including invalid UTF-8, yields a valid (possibly empty) result.
func Parse(raw []byte) models.Entries {
	return ParseString(string(raw))
}

// ParseString is Parse for text already held as a string.
func ParseString(raw string) models.Entries {
	if raw == "" {
		return models.Entries{}
	}

	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	entries := make(models.Entries, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		entries[i] = models.LogEntry{
			LineNumber:   i + 1,
			Level:        Classify(line),
			RawText:      line,
			RenderedText: Render(line),
		}
	}
	return entries
}

// Classify returns the severity of a single line.
func Classify(line string) models.Level {
	for _, rule := range levelRules {
		for _, re := range rule.patterns {
			if re.MatchString(line) {
				return rule.level
			}
		}
	}
	return models.LevelInfo
}
