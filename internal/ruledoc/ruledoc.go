// Package ruledoc splits free-text coding-rule documents into the discrete
// rule lines consumed by the evaluation engine.
package ruledoc

import "strings"

// Line is one non-empty rule line.
type Line struct {
	Number int    // 1-based line number in the document
	Text   string // whitespace-trimmed rule text
}

// ContainsAny reports whether the rule text contains at least one of markers.
func (l Line) ContainsAny(markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(l.Text, m) {
			return true
		}
	}
	return false
}

// SplitLines splits text on "\n". A trailing "\r" is left on each line; the
// callers that care trim it away.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// LineEnding returns "\r\n" when text uses CRLF terminators and "\n"
// otherwise.
func LineEnding(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Parse returns the trimmed non-empty lines of doc in document order.
// An empty document yields no lines.
func Parse(doc string) []Line {
	var lines []Line
	for i, raw := range SplitLines(doc) {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: text})
	}
	return lines
}
