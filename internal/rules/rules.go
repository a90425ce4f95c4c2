// Package rules implements the heuristic rule evaluation engine. It works on
// already-decoded text only; no file I/O or logging happens here.
//
// Detection is line-oriented substring matching, not a C tokenizer. A string
// literal containing "return" trips the semicolon check, and brace balance is
// counted per line.
package rules

import (
	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
)

// Evaluate runs the secondary rule document (when non-nil) and then the
// primary one against source, returning violations in evaluation order.
// Evaluate is a pure function and is safe for concurrent use.
func Evaluate(source, primaryRules string, secondaryRules *string) []schema.Violation {
	var all []schema.Violation
	if secondaryRules != nil {
		all = append(all, CheckDocument(source, *secondaryRules, schema.RuleTypeSecondary)...)
	}
	all = append(all, CheckDocument(source, primaryRules, schema.RuleTypePrimary)...)
	return all
}

// CheckDocument runs the full pipeline for one rule document: the basic
// syntax pass over source followed by the rule-text-driven pass.
func CheckDocument(source, rules string, ruleType schema.RuleType) []schema.Violation {
	lines := ruledoc.SplitLines(source)
	violations := CheckBasicSyntax(lines, ruleType)
	violations = append(violations, CheckRuleText(source, lines, ruledoc.Parse(rules), ruleType)...)
	return violations
}
