package annotate

import (
	"strings"

	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
)

// AttemptAutoCorrection applies best-effort mechanical fixes: a ';' is
// appended to lines flagged for a missing semicolon and flagged indentation
// is normalised to four spaces. The two passes run independently over the
// violations and may touch the same line. The result is not guaranteed to
// compile. A trailing "\r" on a CRLF line stays the last byte of the line.
func AttemptAutoCorrection(source string, violations []schema.Violation) string {
	lines := ruledoc.SplitLines(source)

	for _, v := range violations {
		if !strings.Contains(v.Description, "セミコロンが不足") {
			continue
		}
		idx := v.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		line, cr := cutCR(lines[idx])
		if strings.HasSuffix(line, ";") || strings.Contains(line, "{") || strings.Contains(line, "}") {
			continue
		}
		lines[idx] = line + ";" + cr
	}

	for _, v := range violations {
		if !strings.Contains(v.Description, "インデント") {
			continue
		}
		idx := v.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		line, cr := cutCR(lines[idx])
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.Contains(trimmed, "int main") || strings.Contains(trimmed, "}") {
			continue
		}
		lines[idx] = "    " + trimmed + cr
	}

	return strings.Join(lines, "\n")
}

// cutCR splits a trailing "\r" off line.
func cutCR(line string) (body, cr string) {
	if body, ok := strings.CutSuffix(line, "\r"); ok {
		return body, "\r"
	}
	return line, ""
}
