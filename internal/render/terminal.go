package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/stylecheck/internal/schema"
)

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyles = map[schema.RuleType]lipgloss.Style{
		schema.RuleTypeAssignment: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		schema.RuleTypePrimary:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		schema.RuleTypeSecondary:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
)

// RenderTerminal produces a human-oriented summary of one report. When color
// is false it is plain text; ANSI styling is only applied for terminals.
// The canonical report text is still Result.ReportContent.
func RenderTerminal(report *schema.Report, color bool) string {
	if report == nil {
		return ""
	}
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var sb strings.Builder
	if report.Result.IsCorrect {
		fmt.Fprintf(&sb, "%s %s\n", style(okStyle, "PASS"), report.File)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s %s (%d violations: primary %d, secondary %d, assignment %d)\n",
		style(failStyle, "FAIL"), report.File, report.Summary.Total,
		report.Summary.PrimaryCount, report.Summary.SecondaryCount, report.Summary.AssignmentCount)
	for _, v := range report.Result.Violations {
		label := "[" + v.RuleType.ReportLabel() + "]"
		fmt.Fprintf(&sb, "  %s %s %s\n",
			style(lineStyle, fmt.Sprintf("%s:%d", report.File, v.Line)),
			style(labelStyles[v.RuleType], label),
			v.Description)
	}
	return sb.String()
}
