package models

import "strings"

// Information is a descriptive fact extracted from a log (version, platform, mod count).
type Information struct {
	Label string `json:"label" msgpack:"label"`
	Value string `json:"value" msgpack:"value"`
}

// Solution is one rendered remediation step.
type Solution struct {
	Message string `json:"message" msgpack:"message"`
}

// Segment is a run of solution text, optionally emphasized.
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Segments splits the message on single-quoted spans. Quoted text is emphasized
// and keeps its quotes; an unterminated quote is treated as plain text.
func (s Solution) Segments() []Segment {
	var out []Segment
	rest := s.Message
	for rest != "" {
		open := strings.IndexByte(rest, '\'')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open+1:], '\'')
		if end <= 0 {
			break
		}
		end += open + 1
		if open > 0 {
			out = append(out, Segment{Text: rest[:open]})
		}
		out = append(out, Segment{Text: rest[open : end+1], Emphasized: true})
		rest = rest[end+1:]
	}
	if rest != "" {
		out = append(out, Segment{Text: rest})
	}
	return out
}

// Problem is one signature's match against a log.
type Problem struct {
	SignatureID     string     `json:"signature" msgpack:"signature"`
	TriggeringEntry LogEntry   `json:"entry" msgpack:"entry"`
	Message         string     `json:"message" msgpack:"message"`
	Solutions       []Solution `json:"solutions" msgpack:"solutions"`
}

// AnalysisReport aggregates everything the analyzer found in one log.
type AnalysisReport struct {
	Title       string        `json:"title" msgpack:"title"`
	Information []Information `json:"information" msgpack:"information"`
	Problems    []Problem     `json:"problems" msgpack:"problems"`
}

// Empty reports whether the analyzer found neither information nor problems.
func (r *AnalysisReport) Empty() bool {
	return len(r.Information) == 0 && len(r.Problems) == 0
}

// Lookup returns the first information value with the given label.
func (r *AnalysisReport) Lookup(label string) (string, bool) {
	for _, info := range r.Information {
		if info.Label == label {
			return info.Value, true
		}
	}
	return "", false
}

// AnalyzedLog is the composed view returned for human-facing rendering.
type AnalyzedLog struct {
	Record  *LogRecord      `json:"record" msgpack:"record"`
	Entries Entries         `json:"entries" msgpack:"entries"`
	Report  *AnalysisReport `json:"report" msgpack:"report"`
}
