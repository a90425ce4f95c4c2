package annotate

import (
	"strings"
	"testing"

	"github.com/dshills/stylecheck/internal/rules"
	"github.com/dshills/stylecheck/internal/schema"
)

func TestPriority(t *testing.T) {
	cases := []struct {
		v    schema.Violation
		want int
	}{
		{schema.Violation{RuleType: schema.RuleTypeAssignment, Description: "課題1: Hello Worldの出力が必要です"}, 100},
		{schema.Violation{RuleType: schema.RuleTypePrimary, Description: rules.DescMissingSemicolon}, 70},
		{schema.Violation{RuleType: schema.RuleTypePrimary, Description: rules.DescBadIndentation}, 60},
		{schema.Violation{RuleType: schema.RuleTypeSecondary, Description: rules.DescEmptyComment}, 30},
		{schema.Violation{RuleType: schema.RuleTypeSecondary, Description: rules.DescBraceMismatch}, 25},
	}
	for _, c := range cases {
		if got := Priority(c.v); got != c.want {
			t.Errorf("Priority(%+v) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestAnnotateEmptyReturnsSource(t *testing.T) {
	src := "int main() {\n}\n"
	if got := Annotate(src, nil); got != src {
		t.Errorf("Annotate with no violations = %q, want source unchanged", got)
	}
}

func TestAnnotateSingleViolation(t *testing.T) {
	src := "int main() {\n    int x = 5\n}"
	got := Annotate(src, []schema.Violation{
		{Line: 2, Description: rules.DescMissingSemicolon, RuleType: schema.RuleTypePrimary},
	})
	want := "int main() {\n// [違反] [主要規約] セミコロンが不足しています\n    int x = 5\n}"
	if got != want {
		t.Errorf("Annotate =\n%s\nwant\n%s", got, want)
	}
}

func TestAnnotateGroupOrderAndSeparators(t *testing.T) {
	src := "x = 1;"
	got := Annotate(src, []schema.Violation{
		{Line: 1, Description: rules.DescBraceMismatch, RuleType: schema.RuleTypeSecondary},
		{Line: 1, Description: "課題3: 条件分岐(if文またはswitch文)が必要です", RuleType: schema.RuleTypeAssignment},
	})
	lines := strings.Split(got, "\n")
	want := []string{
		Separator,
		"// [違反] [課題要件] 課題3: 条件分岐(if文またはswitch文)が必要です",
		"// [違反] [二次規約] 波括弧の対応が正しくありません",
		Separator,
		"x = 1;",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if len(Separator) != len("// ")+40 {
		t.Errorf("separator length = %d", len(Separator))
	}
}

func TestAnnotateStableTies(t *testing.T) {
	block := Block([]schema.Violation{
		{Line: 1, Description: rules.DescBraceMismatch, RuleType: schema.RuleTypePrimary},
		{Line: 1, Description: rules.DescParenMismatch, RuleType: schema.RuleTypePrimary},
	})
	if block[1] != "// [違反] [主要規約] "+rules.DescBraceMismatch ||
		block[2] != "// [違反] [主要規約] "+rules.DescParenMismatch {
		t.Errorf("tie order not preserved: %q", block)
	}
}

func TestAnnotateLineCountAndOrder(t *testing.T) {
	src := "#include <stdio.h>\nint main() {\nint a = 1\n\tprintf(\"x\")\n    return 0;\n}"
	vs := rules.Evaluate(src, "", nil)
	if len(vs) == 0 {
		t.Fatal("fixture should produce violations")
	}
	got := Annotate(src, vs)

	inserted := 0
	groups := map[int]int{}
	for _, v := range vs {
		groups[v.Line]++
	}
	for _, n := range groups {
		inserted += n
		if n > 1 {
			inserted += 2
		}
	}
	orig := strings.Split(src, "\n")
	out := strings.Split(got, "\n")
	if len(out) != len(orig)+inserted {
		t.Errorf("line count = %d, want %d", len(out), len(orig)+inserted)
	}

	// Original lines survive in their original relative order.
	var kept []string
	for _, l := range out {
		if strings.HasPrefix(l, "// [違反]") || l == Separator {
			continue
		}
		kept = append(kept, l)
	}
	if strings.Join(kept, "\n") != src {
		t.Errorf("original lines not preserved:\n%s", strings.Join(kept, "\n"))
	}

	if again := Annotate(src, vs); again != got {
		t.Error("Annotate is not deterministic")
	}
}

func TestAnnotateSkipsOutOfRange(t *testing.T) {
	src := "    int x;"
	got := Annotate(src, []schema.Violation{
		{Line: 0, Description: "zero", RuleType: schema.RuleTypePrimary},
		{Line: 5, Description: "past end", RuleType: schema.RuleTypePrimary},
	})
	if got != src {
		t.Errorf("Annotate = %q, want source unchanged", got)
	}
}

func TestAttemptAutoCorrection(t *testing.T) {
	src := "int main() {\nint x = 5\n  return 0;\n}"
	vs := rules.Evaluate(src, "", nil)
	got := AttemptAutoCorrection(src, vs)
	want := "int main() {\n    int x = 5;\n    return 0;\n}"
	if got != want {
		t.Errorf("AttemptAutoCorrection =\n%q\nwant\n%q", got, want)
	}
}

func TestAttemptAutoCorrectionSkipsBlocks(t *testing.T) {
	src := "int f() {"
	vs := []schema.Violation{
		{Line: 1, Description: rules.DescMissingSemicolon, RuleType: schema.RuleTypePrimary},
		{Line: 1, Description: rules.DescBadIndentation, RuleType: schema.RuleTypePrimary},
		{Line: 9, Description: rules.DescMissingSemicolon, RuleType: schema.RuleTypePrimary},
	}
	if got := AttemptAutoCorrection(src, vs); got != "    int f() {" {
		t.Errorf("AttemptAutoCorrection = %q", got)
	}
}

func TestCRLFLineEndingsPreserved(t *testing.T) {
	src := "int main() {\r\n    int x = 5\r\n}\r\n"
	vs := rules.Evaluate(src, "", nil)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "autofix",
			got:  AttemptAutoCorrection(src, vs),
			want: "int main() {\r\n    int x = 5;\r\n}\r\n",
		},
		{
			name: "autofix indentation",
			got: AttemptAutoCorrection("int main() {\r\n  return 0;\r\n}", []schema.Violation{
				{Line: 2, Description: rules.DescBadIndentation, RuleType: schema.RuleTypePrimary},
			}),
			want: "int main() {\r\n    return 0;\r\n}",
		},
		{
			name: "annotate",
			got: Annotate(src, []schema.Violation{
				{Line: 2, Description: rules.DescMissingSemicolon, RuleType: schema.RuleTypePrimary},
			}),
			want: "int main() {\r\n// [違反] [主要規約] " + rules.DescMissingSemicolon + "\r\n    int x = 5\r\n}\r\n",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Errorf("got\n%q\nwant\n%q", c.got, c.want)
			}
			if bare := strings.Count(c.got, "\n") - strings.Count(c.got, "\r\n"); bare != 0 {
				t.Errorf("%d bare LF terminators in %q", bare, c.got)
			}
		})
	}
}
