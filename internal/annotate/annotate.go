// Package annotate turns violations into inline source comments and provides
// the opt-in mechanical auto-correction. Both operations are pure.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
)

// Separator wraps comment blocks for lines carrying more than one violation.
var Separator = "// " + strings.Repeat("-", 40)

// Priority scores a violation; higher scores are placed closer to the code line.
func Priority(v schema.Violation) int {
	score := 0
	switch v.RuleType {
	case schema.RuleTypeAssignment:
		score += 100
	case schema.RuleTypePrimary:
		score += 50
	case schema.RuleTypeSecondary:
		score += 25
	}
	switch {
	case strings.Contains(v.Description, "セミコロン"):
		score += 20
	case strings.Contains(v.Description, "インデント"):
		score += 10
	case strings.Contains(v.Description, "コメント"):
		score += 5
	}
	return score
}

// Comment renders a single violation as a one-line C comment.
func Comment(v schema.Violation) string {
	return fmt.Sprintf("// [違反] [%s] %s", v.RuleType.AnnotationLabel(), v.Description)
}

// Block renders the comment lines for one source line's violations, highest
// priority first. Ties keep their original relative order.
func Block(group []schema.Violation) []string {
	sorted := make([]schema.Violation, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Priority(sorted[i]) > Priority(sorted[j])
	})

	block := make([]string, 0, len(sorted)+2)
	if len(sorted) > 1 {
		block = append(block, Separator)
	}
	for _, v := range sorted {
		block = append(block, Comment(v))
	}
	if len(sorted) > 1 {
		block = append(block, Separator)
	}
	return block
}

// Annotate returns a copy of source with a comment block inserted directly
// above every line that has violations. Violations whose line is outside the
// source are skipped. With no violations, source is returned unchanged.
// Inserted lines use the source's line terminator.
func Annotate(source string, violations []schema.Violation) string {
	if len(violations) == 0 {
		return source
	}
	lines := ruledoc.SplitLines(source)
	cr := strings.TrimSuffix(ruledoc.LineEnding(source), "\n")

	groups := make(map[int][]schema.Violation)
	var lineNums []int
	for _, v := range violations {
		if _, seen := groups[v.Line]; !seen {
			lineNums = append(lineNums, v.Line)
		}
		groups[v.Line] = append(groups[v.Line], v)
	}
	// Descending so earlier insertions never shift later targets.
	sort.Sort(sort.Reverse(sort.IntSlice(lineNums)))

	for _, n := range lineNums {
		idx := n - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		block := Block(groups[n])
		for i := range block {
			block[i] += cr
		}
		out := make([]string, 0, len(lines)+len(block))
		out = append(out, lines[:idx]...)
		out = append(out, block...)
		out = append(out, lines[idx:]...)
		lines = out
	}
	return strings.Join(lines, "\n")
}
