// Package schema defines all canonical data types for stylecheck results.
package schema

// RuleType classifies which rule document (or requirement kind) produced a
// violation.
type RuleType string

const (
	RuleTypePrimary    RuleType = "primary"
	RuleTypeSecondary  RuleType = "secondary"
	RuleTypeAssignment RuleType = "assignment"
)

// AnnotationLabel returns the label used in inline violation comments.
func (t RuleType) AnnotationLabel() string {
	switch t {
	case RuleTypePrimary:
		return "主要規約"
	case RuleTypeSecondary:
		return "二次規約"
	case RuleTypeAssignment:
		return "課題要件"
	default:
		return string(t)
	}
}

// ReportLabel returns the label used in the textual report. It differs from
// AnnotationLabel only for assignment requirements.
func (t RuleType) ReportLabel() string {
	switch t {
	case RuleTypePrimary:
		return "主要規約"
	case RuleTypeSecondary:
		return "二次規約"
	case RuleTypeAssignment:
		return "課題規約"
	default:
		return string(t)
	}
}

// Violation is one located rule breach. Values are never mutated after
// construction.
type Violation struct {
	Line        int      `json:"line"`
	Description string   `json:"description"`
	Rule        string   `json:"rule"`
	RuleType    RuleType `json:"rule_type"`
}

// Input bundles the already-decoded texts of one evaluation.
// SecondaryRules is nil when no secondary document was supplied; a non-nil
// pointer to an empty string is still evaluated.
type Input struct {
	Source         string  `json:"source"`
	PrimaryRules   string  `json:"primary_rules"`
	SecondaryRules *string `json:"secondary_rules,omitempty"`
}

// CheckResult is the immutable outcome of one evaluation.
type CheckResult struct {
	IsCorrect     bool        `json:"is_correct"`
	Violations    []Violation `json:"violations"`
	CorrectedCode *string     `json:"corrected_code,omitempty"`
	ReportContent string      `json:"report_content"`
}

// Summary holds issue counts derived from a CheckResult.
type Summary struct {
	Total           int `json:"total"`
	PrimaryCount    int `json:"primary_count"`
	SecondaryCount  int `json:"secondary_count"`
	AssignmentCount int `json:"assignment_count"`
	LinesAnalyzed   int `json:"lines_analyzed"`
}

// Report is the top-level machine-readable output document for one source file.
type Report struct {
	Tool    string      `json:"tool"`
	Version string      `json:"version"`
	File    string      `json:"file"`
	Summary Summary     `json:"summary"`
	Result  CheckResult `json:"result"`
}
