package rules

import (
	"strings"

	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
)

// Descriptions emitted by the rule-text-driven pass.
const (
	DescEmptyComment = "空のコメントは避けてください"
	DescCamelCase    = "関数名はキャメルケースで命名してください"
)

// AssignmentLine is the fixed anchor for whole-source assignment violations.
const AssignmentLine = 1

// Requirement is a whole-source assignment requirement triggered by markers
// in a rule line.
type Requirement struct {
	Label       string
	Markers     []string
	Description string
	Satisfied   func(source string) bool
}

// Requirements is the fixed catalog, checked in order. At most one
// requirement violation is reported per rule line: the first failing one.
var Requirements = []Requirement{
	{
		Label:       "課題1",
		Markers:     []string{"課題1", "Hello"},
		Description: "課題1: Hello Worldの出力が必要です",
		Satisfied: func(src string) bool {
			return strings.Contains(src, "printf") && strings.Contains(src, "Hello")
		},
	},
	{
		Label:       "課題2",
		Markers:     []string{"課題2", "変数"},
		Description: "課題2: 変数の宣言が必要です",
		Satisfied: func(src string) bool {
			return containsAny(src, "int ", "float ", "double ")
		},
	},
	{
		Label:       "課題3",
		Markers:     []string{"課題3", "条件分岐"},
		Description: "課題3: 条件分岐(if文またはswitch文)が必要です",
		Satisfied: func(src string) bool {
			return containsAny(src, "if", "switch")
		},
	},
	{
		Label:       "課題4",
		Markers:     []string{"課題4", "ループ"},
		Description: "課題4: ループ処理(for文、while文、またはdo-while文)が必要です",
		Satisfied: func(src string) bool {
			return containsAny(src, "for", "while", "do")
		},
	},
}

// CheckRuleText evaluates every rule line against the source. source is the
// whole text, lines its raw split; ruleType applies to custom-rule violations
// only, assignment violations are always tagged RuleTypeAssignment.
func CheckRuleText(source string, lines []string, ruleLines []ruledoc.Line, ruleType schema.RuleType) []schema.Violation {
	var violations []schema.Violation
	for _, rl := range ruleLines {
		if v, ok := CheckAssignment(source, rl); ok {
			violations = append(violations, v)
		}
		violations = append(violations, CheckCustomRules(lines, rl, ruleType)...)
	}
	return violations
}

// CheckAssignment tests the first requirement whose marker appears in the rule
// line and fails against source.
func CheckAssignment(source string, rl ruledoc.Line) (schema.Violation, bool) {
	for _, req := range Requirements {
		if !rl.ContainsAny(req.Markers...) {
			continue
		}
		if req.Satisfied(source) {
			continue
		}
		return schema.Violation{
			Line:        AssignmentLine,
			Description: req.Description,
			Rule:        rl.Text,
			RuleType:    schema.RuleTypeAssignment,
		}, true
	}
	return schema.Violation{}, false
}

// CheckCustomRules applies the comment and naming rules named by a rule line.
func CheckCustomRules(lines []string, rl ruledoc.Line, ruleType schema.RuleType) []schema.Violation {
	var violations []schema.Violation

	if rl.ContainsAny("コメント") {
		for i, line := range lines {
			if EmptyComment(line) {
				violations = append(violations, schema.Violation{
					Line:        i + 1,
					Description: DescEmptyComment,
					Rule:        rl.Text,
					RuleType:    ruleType,
				})
			}
		}
	}

	if rl.ContainsAny("関数名", "命名") && rl.ContainsAny("キャメルケース") {
		for i, line := range lines {
			if SnakeCaseCall(line) {
				violations = append(violations, schema.Violation{
					Line:        i + 1,
					Description: DescCamelCase,
					Rule:        rl.Text,
					RuleType:    ruleType,
				})
			}
		}
	}

	return violations
}

// EmptyComment reports whether line has a "//" comment with no text after it.
func EmptyComment(line string) bool {
	_, after, found := strings.Cut(line, "//")
	return found && strings.TrimSpace(after) == ""
}

// SnakeCaseCall reports whether line looks like a function declaration or call
// (other than main/printf) containing an underscore.
func SnakeCaseCall(line string) bool {
	if !strings.Contains(line, "(") || !strings.Contains(line, ")") {
		return false
	}
	if strings.Contains(line, "main") || strings.Contains(line, "printf") {
		return false
	}
	return strings.Contains(line, "_")
}
