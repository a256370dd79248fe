package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logshare/backend/internal/models"
)

const oomLog = "[10:00:00] [Server thread/INFO]: Starting minecraft server version 1.20.1\n" +
	"[10:05:00] [Server thread/ERROR]: java.lang.OutOfMemoryError: Java heap space\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	analyzeJSON = false
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	out, err := execute(t, oomLog, "analyze")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "## Vanilla Server Log"))
	assert.Contains(t, out, "Line 2:")
}

func TestAnalyzeCommand_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte(oomLog), 0644))

	out, err := execute(t, "", "analyze", "--json", path)
	require.NoError(t, err)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Vanilla Server Log", report.Title)
	require.NotEmpty(t, report.Problems)
	assert.Equal(t, "out-of-memory", report.Problems[0].SignatureID)
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "", "analyze", filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestSweepCommand(t *testing.T) {
	dir := t.TempDir()
	configPath = ""
	t.Cleanup(func() { configPath = "" })

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("storage:\n  dataDirectory: "+dir+"\nlogging:\n  level: error\n"), 0644))

	out, err := execute(t, "", "--config", cfgFile, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "removed 0 expired logs\n", out)
}
