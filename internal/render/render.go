// Package render produces output from violations and assembled reports.
package render

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dshills/stylecheck/internal/schema"
)

// CorrectSentinel is the report content for a source with no violations.
const CorrectSentinel = "correct"

// ReportHeader is the first line of a non-empty report.
const ReportHeader = "コーディング規約違反レポート"

// RenderReport produces the deterministic plain-text report for violations,
// in their given order. It returns CorrectSentinel when there are none.
func RenderReport(violations []schema.Violation) string {
	if len(violations) == 0 {
		return CorrectSentinel
	}
	var sb strings.Builder
	sb.WriteString(ReportHeader + "\n")
	sb.WriteString(strings.Repeat("=", 30) + "\n\n")
	for i, v := range violations {
		fmt.Fprintf(&sb, "%d. 行 %d: %s\n", i+1, v.Line, v.Description)
		fmt.Fprintf(&sb, "   規約種別: %s\n", v.RuleType.ReportLabel())
		fmt.Fprintf(&sb, "   規約内容: %s\n\n", v.Rule)
	}
	return sb.String()
}

// RenderJSON produces a pretty-printed JSON representation of the reports.
func RenderJSON(reports []schema.Report) ([]byte, error) {
	if reports == nil {
		return nil, fmt.Errorf("render: nil reports")
	}
	b, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of one report,
// suitable for PR comments or LMS feedback.
func RenderMarkdown(report *schema.Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "## stylecheck: `%s`\n\n", report.File)
	verdict := "correct"
	if !report.Result.IsCorrect {
		verdict = "violations found"
	}
	fmt.Fprintf(&sb, "**Verdict:** %s  \n", verdict)
	fmt.Fprintf(&sb, "**Primary:** %d | **Secondary:** %d | **Assignment:** %d\n\n",
		report.Summary.PrimaryCount, report.Summary.SecondaryCount, report.Summary.AssignmentCount)

	if len(report.Result.Violations) > 0 {
		sb.WriteString("| # | Line | Type | Description | Rule |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for i, v := range report.Result.Violations {
			fmt.Fprintf(&sb, "| %d | %d | %s | %s | %s |\n",
				i+1, v.Line, v.RuleType.ReportLabel(), mdEscape(v.Description), mdEscape(v.Rule))
		}
		sb.WriteString("\n")
	}

	if report.Result.CorrectedCode != nil {
		sb.WriteString("<details>\n<summary>Annotated source</summary>\n\n")
		sb.WriteString("```c\n")
		sb.WriteString(*report.Result.CorrectedCode)
		if !strings.HasSuffix(*report.Result.CorrectedCode, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n</details>\n")
	}

	return sb.String()
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
