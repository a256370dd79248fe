package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/analysis"
	"github.com/logshare/backend/internal/parser"
)

var analyzeJSON bool

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a local log without storing it",
		Long: `Parse and analyze a log file, or stdin when the file is "-" or omitted,
and print the report.

Examples:
  # Markdown summary
  logshare analyze logs/latest.log

  # JSON report from stdin
  cat crash.txt | logshare analyze --json -`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var (
		content []byte
		err     error
	)
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	entries := parser.Parse(content)
	report := analysis.NewAnalyzer(nil, zap.NewNop()).Analyze(entries)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err = io.WriteString(out, analysis.Summary(entries, report))
	return err
}
