package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/logshare/backend/internal/models"
)

func panicking(msg string) Matcher {
	return MatcherFunc(func(models.Entries) (Match, bool) {
		panic(msg)
	})
}

func TestAnalyze_EmptyLog(t *testing.T) {
	a := NewAnalyzer(nil, zaptest.NewLogger(t))

	report := a.Analyze(nil)
	assert.Equal(t, DefaultTitle, report.Title)
	assert.True(t, report.Empty())
	assert.NotNil(t, report.Problems)
	assert.NotNil(t, report.Information)
}

func TestAnalyze_SignatureReportsOnce(t *testing.T) {
	lib := &Library{
		Signatures: []Signature{{
			ID:      "boom",
			Match:   Line(`boom (\d+)`),
			Message: "exploded at $1",
		}},
	}
	a := NewAnalyzer(lib, zaptest.NewLogger(t))

	report := a.Analyze(entriesOf("boom 1\nboom 2\nboom 3\n"))
	require.Len(t, report.Problems, 1)
	assert.Equal(t, "exploded at 1", report.Problems[0].Message)
	assert.Equal(t, 1, report.Problems[0].TriggeringEntry.LineNumber)
}

func TestAnalyze_PreservesDeclarationOrder(t *testing.T) {
	lib := &Library{
		Information: []InformationRule{
			{Label: "B", Match: Line(`b=(\w+)`)},
			{Label: "A", Match: Line(`a=(\w+)`)},
		},
		Signatures: []Signature{
			{ID: "second-line", Match: Line(`b=`), Message: "b"},
			{ID: "first-line", Match: Line(`a=`), Message: "a"},
		},
	}
	report := NewAnalyzer(lib, nil).Analyze(entriesOf("a=1\nb=2\n"))

	require.Len(t, report.Information, 2)
	assert.Equal(t, models.Information{Label: "B", Value: "2"}, report.Information[0])
	assert.Equal(t, models.Information{Label: "A", Value: "1"}, report.Information[1])

	require.Len(t, report.Problems, 2)
	assert.Equal(t, "second-line", report.Problems[0].SignatureID)
	assert.Equal(t, "first-line", report.Problems[1].SignatureID)
}

func TestAnalyze_SameEntryTwoSignatures(t *testing.T) {
	lib := &Library{
		Signatures: []Signature{
			{ID: "one", Match: Line(`fail`), Message: "one"},
			{ID: "two", Match: Line(`fail`), Message: "two"},
		},
	}
	report := NewAnalyzer(lib, nil).Analyze(entriesOf("ok\nfail\n"))

	require.Len(t, report.Problems, 2)
	assert.Equal(t, report.Problems[0].TriggeringEntry, report.Problems[1].TriggeringEntry)
}

func TestAnalyze_SolutionsKeepOrderAndCaptures(t *testing.T) {
	lib := &Library{
		Signatures: []Signature{{
			ID:        "file",
			Match:     Line(`cannot open (\S+)`),
			Message:   "Cannot open '$1'.",
			Solutions: []string{"Check '$1' exists.", "Check permissions.", "Restart."},
		}},
	}
	report := NewAnalyzer(lib, nil).Analyze(entriesOf("cannot open world/level.dat"))

	require.Len(t, report.Problems, 1)
	p := report.Problems[0]
	assert.Equal(t, "Cannot open 'world/level.dat'.", p.Message)
	require.Len(t, p.Solutions, 3)
	assert.Equal(t, "Check 'world/level.dat' exists.", p.Solutions[0].Message)
	assert.Equal(t, "Check permissions.", p.Solutions[1].Message)
	assert.Equal(t, "Restart.", p.Solutions[2].Message)
}

func TestAnalyze_RuleFaultIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lib := &Library{
		Detectors: []Detector{
			{Title: "Broken", Match: panicking("detector")},
			{Title: "Working", Match: Line(`hello`)},
		},
		Information: []InformationRule{
			{Label: "bad", Match: panicking("info")},
			{Label: "greeting", Match: Line(`(hello)`)},
		},
		Signatures: []Signature{
			{ID: "before", Match: Line(`hello`), Message: "before"},
			{ID: "broken", Match: panicking("signature")},
			{ID: "after", Match: Line(`hello`), Message: "after"},
		},
	}
	a := NewAnalyzer(lib, zap.New(core))

	var report *models.AnalysisReport
	require.NotPanics(t, func() {
		report = a.Analyze(entriesOf("hello world\n"))
	})

	assert.Equal(t, "Working", report.Title)
	require.Len(t, report.Information, 1)
	assert.Equal(t, "greeting", report.Information[0].Label)
	require.Len(t, report.Problems, 2)
	assert.Equal(t, "before", report.Problems[0].SignatureID)
	assert.Equal(t, "after", report.Problems[1].SignatureID)

	faults := logs.FilterMessage("analysis rule failed")
	require.Equal(t, 3, faults.Len())
	fields := faults.FilterField(zap.String("signature", "broken")).All()
	require.Len(t, fields, 1)
	assert.Equal(t, "signature", fields[0].ContextMap()["panic"])
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	entries := entriesOf(crashReport)

	var wg sync.WaitGroup
	reports := make([]*models.AnalysisReport, 8)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i] = a.Analyze(entries)
		}(i)
	}
	wg.Wait()

	for _, r := range reports[1:] {
		assert.Equal(t, reports[0], r)
	}
}

func TestLibrary_Validate(t *testing.T) {
	require.NoError(t, DefaultLibrary().Validate())

	bad := &Library{
		Detectors:   []Detector{{Title: "no matcher"}},
		Information: []InformationRule{{Match: Line(`x`)}},
		Signatures: []Signature{
			{ID: "dup", Match: Line(`x`)},
			{ID: "dup", Match: Line(`y`)},
			{Match: Line(`z`)},
		},
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `detector "no matcher"`)
	assert.Contains(t, err.Error(), `signature "dup": duplicate id`)
	assert.Contains(t, err.Error(), `signature "": id and matcher are required`)
}
