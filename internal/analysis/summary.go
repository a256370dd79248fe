package analysis

import (
	"fmt"
	"strings"

	"github.com/logshare/backend/internal/models"
)

// Summary renders the report as a short markdown digest.
func Summary(entries models.Entries, report *models.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", report.Title)
	fmt.Fprintf(&b, "%d lines | %d errors | %d problems\n\n",
		len(entries), entries.ErrorCount(), len(report.Problems))

	if len(report.Information) > 0 {
		b.WriteString("### Information\n")
		for _, info := range report.Information {
			fmt.Fprintf(&b, "- **%s**: %s\n", info.Label, info.Value)
		}
		b.WriteString("\n")
	}

	if len(report.Problems) == 0 {
		b.WriteString("No known problems found.\n")
		return b.String()
	}

	b.WriteString("### Problems\n")
	for _, p := range report.Problems {
		fmt.Fprintf(&b, "#### %s\n", p.Message)
		fmt.Fprintf(&b, "Line %d: `%s`\n", p.TriggeringEntry.LineNumber, strings.ReplaceAll(p.TriggeringEntry.RawText, "`", "'"))
		if len(p.Solutions) > 0 {
			b.WriteString("\n**Solutions:**\n")
			for _, sol := range p.Solutions {
				fmt.Fprintf(&b, "- %s\n", emphasize(sol))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func emphasize(sol models.Solution) string {
	var b strings.Builder
	for _, seg := range sol.Segments() {
		if seg.Emphasized {
			b.WriteString("**" + seg.Text + "**")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
