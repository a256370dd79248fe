package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/logshare/backend/internal/models"
	"github.com/logshare/backend/internal/parser"
)

// DefaultTitle is reported when no detector recognizes the log.
const DefaultTitle = "Unknown Log"

// Signature recognizes one known problem.
type Signature struct {
	ID        string
	Match     Matcher
	Message   string
	Solutions []string
}

// InformationRule extracts one descriptive fact. Value defaults to "$1".
type InformationRule struct {
	Label string
	Match Matcher
	Value string
}

// Detector names the kind of log when it matches.
type Detector struct {
	Title string
	Match Matcher
}

// Library is an ordered, immutable rule set. It is shared by every analysis
// and must not be modified once handed to an Analyzer.
type Library struct {
	Detectors   []Detector
	Information []InformationRule
	Signatures  []Signature
}

// Validate reports rules without a matcher and duplicate signature ids.
func (l *Library) Validate() error {
	var errs []error
	for _, d := range l.Detectors {
		if d.Title == "" || d.Match == nil {
			errs = append(errs, fmt.Errorf("detector %q: title and matcher are required", d.Title))
		}
	}
	for _, r := range l.Information {
		if r.Label == "" || r.Match == nil {
			errs = append(errs, fmt.Errorf("information %q: label and matcher are required", r.Label))
		}
	}
	seen := make(map[string]bool, len(l.Signatures))
	for _, s := range l.Signatures {
		switch {
		case s.ID == "" || s.Match == nil:
			errs = append(errs, fmt.Errorf("signature %q: id and matcher are required", s.ID))
		case seen[s.ID]:
			errs = append(errs, fmt.Errorf("signature %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
	}
	return errors.Join(errs...)
}

func (s Signature) problem(m Match) models.Problem {
	p := models.Problem{
		SignatureID:     s.ID,
		TriggeringEntry: m.Entry,
		Message:         Expand(s.Message, m.Captures),
		Solutions:       make([]models.Solution, len(s.Solutions)),
	}
	for i, sol := range s.Solutions {
		p.Solutions[i] = models.Solution{Message: Expand(sol, m.Captures)}
	}
	return p
}

func (r InformationRule) information(m Match) models.Information {
	tmpl := r.Value
	if tmpl == "" {
		tmpl = "$1"
	}
	return models.Information{Label: r.Label, Value: Expand(tmpl, m.Captures)}
}

var placeholder = regexp.MustCompile(`\$([1-9])`)

// Expand replaces $1..$9 with the corresponding capture, stripped of
// formatting codes. Placeholders without a capture are left as written.
func Expand(tmpl string, captures []string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(ph string) string {
		n, _ := strconv.Atoi(ph[1:])
		if n >= len(captures) {
			return ph
		}
		return parser.Strip(captures[n])
	})
}
