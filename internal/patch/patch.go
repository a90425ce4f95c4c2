// Package patch renders line-preserving source edits, such as those made by
// auto-correction, as a unified diff.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/dshills/stylecheck/internal/ruledoc"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

// ErrLineCountChanged is returned when the edit added or removed lines.
var ErrLineCountChanged = errors.New("patch: before and after differ in line count")

// Unified returns a unified diff from before to after, labelled a/name and
// b/name. It returns "" when the texts are equal. Edits must keep the line
// count; the end-of-file newline marker is not emitted.
func Unified(name, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	orig := lines(before)
	next := lines(after)
	if len(orig) != len(next) {
		return "", ErrLineCountChanged
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks(orig, next),
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("patch: print: %w", err)
	}
	return string(out), nil
}

// lines splits text into lines without the empty element after a trailing
// newline.
func lines(text string) []string {
	ls := ruledoc.SplitLines(text)
	if n := len(ls); n > 0 && ls[n-1] == "" {
		ls = ls[:n-1]
	}
	return ls
}

// hunks groups changed lines, with ContextLines of context, into hunks.
// Hunks whose context would touch are merged.
func hunks(orig, next []string) []*diff.Hunk {
	var changed []int
	for i := range orig {
		if orig[i] != next[i] {
			changed = append(changed, i)
		}
	}

	var out []*diff.Hunk
	for k := 0; k < len(changed); {
		start := max(changed[k]-ContextLines, 0)
		end := min(changed[k]+ContextLines+1, len(orig))
		k++
		for k < len(changed) && changed[k]-ContextLines <= end {
			end = min(changed[k]+ContextLines+1, len(orig))
			k++
		}
		out = append(out, hunk(orig, next, start, end))
	}
	return out
}

// hunk renders lines [start, end). Each run of changed lines is written as
// all removals followed by all additions.
func hunk(orig, next []string, start, end int) *diff.Hunk {
	var body strings.Builder
	for i := start; i < end; {
		if orig[i] == next[i] {
			body.WriteString(" " + orig[i] + "\n")
			i++
			continue
		}
		j := i
		for j < end && orig[j] != next[j] {
			j++
		}
		for _, l := range orig[i:j] {
			body.WriteString("-" + l + "\n")
		}
		for _, l := range next[i:j] {
			body.WriteString("+" + l + "\n")
		}
		i = j
	}
	n := int32(end - start)
	return &diff.Hunk{
		OrigStartLine: int32(start + 1),
		OrigLines:     n,
		NewStartLine:  int32(start + 1),
		NewLines:      n,
		Body:          []byte(body.String()),
	}
}
