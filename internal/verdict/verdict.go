// Package verdict aggregates evaluation output into an immutable CheckResult
// and derives summary counts and exit codes. It performs no I/O.
package verdict

import (
	"github.com/dshills/stylecheck/internal/annotate"
	"github.com/dshills/stylecheck/internal/render"
	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/rules"
	"github.com/dshills/stylecheck/internal/schema"
)

// Exit codes returned by the CLI.
const (
	ExitCorrect    = 0
	ExitError      = 1
	ExitViolations = 2
)

// Check evaluates in and builds its result.
func Check(in schema.Input) schema.CheckResult {
	violations := rules.Evaluate(in.Source, in.PrimaryRules, in.SecondaryRules)
	return BuildResult(in.Source, violations)
}

// BuildResult composes the annotated source and report for violations.
// CorrectedCode is only set when there is at least one violation.
func BuildResult(source string, violations []schema.Violation) schema.CheckResult {
	owned := make([]schema.Violation, len(violations))
	copy(owned, violations)

	result := schema.CheckResult{
		IsCorrect:     len(owned) == 0,
		Violations:    owned,
		ReportContent: render.RenderReport(owned),
	}
	if !result.IsCorrect {
		annotated := annotate.Annotate(source, owned)
		result.CorrectedCode = &annotated
	}
	return result
}

// CountByRuleType aggregates violation counts per rule type.
func CountByRuleType(violations []schema.Violation) (primary, secondary, assignment int) {
	for _, v := range violations {
		switch v.RuleType {
		case schema.RuleTypePrimary:
			primary++
		case schema.RuleTypeSecondary:
			secondary++
		case schema.RuleTypeAssignment:
			assignment++
		}
	}
	return
}

// Summarize derives the summary counts for a result over source.
func Summarize(source string, result schema.CheckResult) schema.Summary {
	p, s, a := CountByRuleType(result.Violations)
	lines := 0
	if source != "" {
		lines = len(ruledoc.SplitLines(source))
	}
	return schema.Summary{
		Total:           len(result.Violations),
		PrimaryCount:    p,
		SecondaryCount:  s,
		AssignmentCount: a,
		LinesAnalyzed:   lines,
	}
}

// ExitCode returns ExitViolations if any result has violations, otherwise
// ExitCorrect.
func ExitCode(results ...schema.CheckResult) int {
	for _, r := range results {
		if !r.IsCorrect {
			return ExitViolations
		}
	}
	return ExitCorrect
}
