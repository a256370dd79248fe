package analysis

import (
	"regexp"

	"github.com/logshare/backend/internal/models"
)

// Match is where a rule fired: the entry a problem is attached to and the
// regex captures templates can reference as $1..$9.
type Match struct {
	Entry    models.LogEntry
	Captures []string
}

// Matcher is a predicate over a whole log. It returns the most representative
// entry when the rule applies.
type Matcher interface {
	Match(entries models.Entries) (Match, bool)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(entries models.Entries) (Match, bool)

func (f MatcherFunc) Match(entries models.Entries) (Match, bool) {
	return f(entries)
}

// Line matches the first entry whose raw text matches pattern.
func Line(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return MatcherFunc(func(entries models.Entries) (Match, bool) {
		for _, e := range entries {
			if m := re.FindStringSubmatch(e.RawText); m != nil {
				return Match{Entry: e, Captures: m}, true
			}
		}
		return Match{}, false
	})
}

// LineAt is Line restricted to entries of one level.
func LineAt(level models.Level, pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return MatcherFunc(func(entries models.Entries) (Match, bool) {
		for _, e := range entries {
			if e.Level != level {
				continue
			}
			if m := re.FindStringSubmatch(e.RawText); m != nil {
				return Match{Entry: e, Captures: m}, true
			}
		}
		return Match{}, false
	})
}

// Sequence matches when patterns hit entries in order, each one at most window
// lines after the previous hit (0 means anywhere later in the log). The match
// is attached to the entry hit by the first pattern. Captures of every step are
// concatenated, so $1 refers to the first group of the first pattern.
func Sequence(window int, patterns ...string) Matcher {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return MatcherFunc(func(entries models.Entries) (Match, bool) {
		if len(res) == 0 {
			return Match{}, false
		}
		for i, e := range entries {
			first := res[0].FindStringSubmatch(e.RawText)
			if first == nil {
				continue
			}
			if captures, ok := followChain(entries, i, res[1:], window, first); ok {
				return Match{Entry: e, Captures: captures}, true
			}
		}
		return Match{}, false
	})
}

func followChain(entries models.Entries, at int, rest []*regexp.Regexp, window int, captures []string) ([]string, bool) {
	if len(rest) == 0 {
		return captures, true
	}
	end := len(entries)
	if window > 0 && at+1+window < end {
		end = at + 1 + window
	}
	for j := at + 1; j < end; j++ {
		m := rest[0].FindStringSubmatch(entries[j].RawText)
		if m == nil {
			continue
		}
		joined := append(append([]string(nil), captures...), m[1:]...)
		if out, ok := followChain(entries, j, rest[1:], window, joined); ok {
			return out, true
		}
	}
	return nil, false
}

// FollowedBy matches a line for first with a line for then within window lines after it.
func FollowedBy(first, then string, window int) Matcher {
	return Sequence(window, first, then)
}

// AnyOf returns the match of the first matcher that applies.
func AnyOf(matchers ...Matcher) Matcher {
	return MatcherFunc(func(entries models.Entries) (Match, bool) {
		for _, m := range matchers {
			if match, ok := m.Match(entries); ok {
				return match, true
			}
		}
		return Match{}, false
	})
}

// MapCaptures rewrites the captures of a successful match.
func MapCaptures(m Matcher, fn func(captures []string) []string) Matcher {
	return MatcherFunc(func(entries models.Entries) (Match, bool) {
		match, ok := m.Match(entries)
		if !ok {
			return match, false
		}
		match.Captures = fn(match.Captures)
		return match, true
	})
}
