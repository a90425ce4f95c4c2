package rules

import (
	"strings"

	"github.com/dshills/stylecheck/internal/schema"
)

// Descriptions emitted by the basic syntax pass. The annotation engine keys
// its priority and auto-fix behaviour off substrings of these.
const (
	DescMissingSemicolon = "セミコロンが不足しています"
	DescBadIndentation   = "インデントが正しくありません（4スペース必要）"
	DescBraceMismatch    = "波括弧の対応が正しくありません"
	DescParenMismatch    = "丸括弧の対応が正しくありません"
)

// Synthesized rule texts for the basic syntax pass.
const (
	RuleSemicolon   = "C言語では文の終わりにセミコロンが必要です"
	RuleIndentation = "関数内のコードは4スペースでインデントしてください"
	RuleBraces      = "波括弧は正しく対応させてください"
	RuleParens      = "丸括弧は正しく対応させてください"
)

// indentUnit is the only accepted leading indentation inside a function body.
const indentUnit = "    "

// statementKeywords mark lines that are expected to end with ';'.
var statementKeywords = []string{"printf", "scanf", "return", "int ", "float ", "double ", "char "}

// CheckBasicSyntax runs the semicolon, indentation and bracket checks over
// every non-blank source line. lines are the raw, untrimmed source lines.
func CheckBasicSyntax(lines []string, ruleType schema.RuleType) []schema.Violation {
	var violations []schema.Violation
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lineNum := i + 1
		if MissingSemicolon(trimmed) {
			violations = append(violations, schema.Violation{
				Line:        lineNum,
				Description: DescMissingSemicolon,
				Rule:        RuleSemicolon,
				RuleType:    ruleType,
			})
		}
		if BadIndentation(line) {
			violations = append(violations, schema.Violation{
				Line:        lineNum,
				Description: DescBadIndentation,
				Rule:        RuleIndentation,
				RuleType:    ruleType,
			})
		}
		braces, parens := BracketMismatch(trimmed)
		if braces {
			violations = append(violations, schema.Violation{
				Line:        lineNum,
				Description: DescBraceMismatch,
				Rule:        RuleBraces,
				RuleType:    ruleType,
			})
		}
		if parens {
			violations = append(violations, schema.Violation{
				Line:        lineNum,
				Description: DescParenMismatch,
				Rule:        RuleParens,
				RuleType:    ruleType,
			})
		}
	}
	return violations
}

// MissingSemicolon reports whether a trimmed line looks like a statement that
// lacks its terminating ';'.
func MissingSemicolon(trimmed string) bool {
	if !containsAny(trimmed, statementKeywords...) {
		return false
	}
	if isSpecialCase(trimmed) {
		return false
	}
	return !strings.HasSuffix(trimmed, ";")
}

// isSpecialCase covers block delimiters, preprocessor lines, commented lines
// and the main signature.
func isSpecialCase(trimmed string) bool {
	return strings.Contains(trimmed, "{") ||
		strings.Contains(trimmed, "}") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.Contains(trimmed, "//") ||
		strings.Contains(trimmed, "int main")
}

// BadIndentation reports whether the untrimmed line sits inside a function
// body without exactly four leading spaces. Tabs anywhere in the leading
// whitespace, and runs of spaces longer or shorter than four, are all flagged.
func BadIndentation(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	shouldBeIndented := !strings.HasPrefix(trimmed, "#") &&
		!strings.Contains(trimmed, "int main") &&
		!strings.Contains(trimmed, "}")
	insideFunction := !strings.Contains(trimmed, "int main") &&
		!strings.HasPrefix(trimmed, "#include") &&
		!strings.Contains(trimmed, "{") &&
		!strings.Contains(trimmed, "}")
	return shouldBeIndented && insideFunction && !hasExactIndent(line)
}

// hasExactIndent reports whether line starts with exactly indentUnit and no
// further space or tab.
func hasExactIndent(line string) bool {
	if !strings.HasPrefix(line, indentUnit) {
		return false
	}
	if len(line) == len(indentUnit) {
		return true
	}
	next := line[len(indentUnit)]
	return next != ' ' && next != '\t'
}

// BracketMismatch compares open/close counts of '{}' and '()' on a single
// line. Balance across lines is not tracked.
func BracketMismatch(trimmed string) (braces, parens bool) {
	openBraces := strings.Count(trimmed, "{")
	closeBraces := strings.Count(trimmed, "}")
	openParens := strings.Count(trimmed, "(")
	closeParens := strings.Count(trimmed, ")")
	braces = openBraces != closeBraces && (openBraces > 0 || closeBraces > 0)
	parens = openParens != closeParens && (openParens > 0 || closeParens > 0)
	return braces, parens
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
