package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logshare/backend/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want models.Level
	}{
		{"[Server thread/WARN]: Can't keep up!", models.LevelWarning},
		{"[STDERR] FATAL ERROR: out of memory", models.LevelError},
		{"[12:00:00] [Server thread/INFO]: Done (4.1s)!", models.LevelInfo},
		{"[main/ERROR]: Failed to load", models.LevelError},
		{"[main/error]: lower case marker", models.LevelError},
		{"[Worker-1/SEVERE] Could not pass event", models.LevelError},
		{"2024-01-01 12:00:00 [ERR] socket closed", models.LevelError},
		{"[Render thread/WARNING]: texture missing", models.LevelWarning},
		{"[main/DEBUG]: classpath scan", models.LevelDebug},
		{"WARN Deprecated option", models.LevelWarning},
		{"DEBUG: verbose mode", models.LevelDebug},
		{"an error occurred in prose", models.LevelInfo},
		{"[STDERR] normal output", models.LevelInfo},
		{"", models.LevelInfo},
		// error outranks warning when both appear
		{"[main/WARN]: [ERROR] nested", models.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestParse_LineSplitting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single line without terminator", "hello", []string{"hello"}},
		{"single line with terminator", "hello\n", []string{"hello"}},
		{"windows terminators", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"inner blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"only a terminator", "\n", []string{""}},
		{"two trailing terminators", "a\n\n", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Parse([]byte(tt.input))
			require.Len(t, entries, len(tt.want))
			for i, e := range entries {
				assert.Equal(t, i+1, e.LineNumber)
				assert.Equal(t, tt.want[i], e.RawText)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	raw := []byte("[main/INFO]: start\n§cboom\n[main/ERROR]: <bad> & 'worse'\n")
	assert.Equal(t, Parse(raw), Parse(raw))
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"a\nb\nc",
		"a\nb\nc\n",
		"§4red§r plain\n\n[x/WARN]: y\n",
		"\xff\xfe invalid utf8\nnext",
	}
	for _, raw := range inputs {
		entries := Parse([]byte(raw))
		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = e.RawText
		}
		assert.Equal(t, strings.TrimSuffix(raw, "\n"), strings.Join(lines, "\n"))
	}
}

func TestParse_RawTextKeepsCodesAndMarkup(t *testing.T) {
	entries := Parse([]byte("§c<Player> hi\n"))
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "§c<Player> hi", e.RawText)
	assert.Equal(t, `<span class="format-red">&lt;Player&gt; hi</span>`, e.RenderedText)
	assert.Equal(t, models.LevelInfo, e.Level)
}

func TestParse_ErrorCount(t *testing.T) {
	entries := Parse([]byte("[a/ERROR]: x\n[a/INFO]: y\n[a/FATAL]: z\n"))
	assert.Equal(t, 2, entries.ErrorCount())
}
