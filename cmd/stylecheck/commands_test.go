package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/stylecheck/internal/llm"
	"github.com/dshills/stylecheck/internal/templates"
	"github.com/dshills/stylecheck/internal/verdict"
)

func TestFix_ToStdout(t *testing.T) {
	f := fixFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}}
	var out bytes.Buffer
	if err := runFix(context.Background(), testApp(t), f, testdata+"violations.c", &out); err != nil {
		t.Fatalf("runFix: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	if lines[2] != "    int count = 0;" {
		t.Errorf("line 3 = %q, want semicolon and indentation fixed", lines[2])
	}
	if lines[4] != "    print_total(count);" {
		t.Errorf("naming violations must not be rewritten, got %q", lines[4])
	}
}

func TestFix_CleanSourceUnchanged(t *testing.T) {
	want, err := os.ReadFile(testdata + "clean.c")
	if err != nil {
		t.Fatal(err)
	}
	f := fixFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}}
	var out bytes.Buffer
	if err := runFix(context.Background(), testApp(t), f, testdata+"clean.c", &out); err != nil {
		t.Fatalf("runFix: %v", err)
	}
	if out.String() != string(want) {
		t.Errorf("clean source changed:\n%s", out.String())
	}
}

func TestFix_OutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixed.c")
	f := fixFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}, out: path}
	var out bytes.Buffer
	if err := runFix(context.Background(), testApp(t), f, testdata+"violations.c", &out); err != nil {
		t.Fatalf("runFix: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty when --out is set, got %q", out.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixed file: %v", err)
	}
	if !strings.Contains(string(b), "    int count = 0;\n") {
		t.Errorf("fixed file missing corrected line:\n%s", b)
	}
}

func TestFix_Diff(t *testing.T) {
	f := fixFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}, diff: true}
	var out bytes.Buffer
	if err := runFix(context.Background(), testApp(t), f, testdata+"violations.c", &out); err != nil {
		t.Fatalf("runFix: %v", err)
	}
	got := out.String()
	for _, want := range []string{"--- a/violations.c\n", "+++ b/violations.c\n", "-int count = 0\n", "+    int count = 0;\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}

func TestFix_ConflictingOutputs(t *testing.T) {
	f := fixFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}, out: "a.c", outDir: "dir"}
	err := runFix(context.Background(), testApp(t), f, testdata+"violations.c", &bytes.Buffer{})
	if code := exitCode(err); code != verdict.ExitError {
		t.Errorf("expected exit 1, got %d", code)
	}
}

func TestTemplate(t *testing.T) {
	var out bytes.Buffer
	if err := runTemplate(testApp(t), []string{"課題3"}, "", &out); err != nil {
		t.Fatalf("runTemplate: %v", err)
	}
	want, _ := templates.Get("課題3")
	if out.String() != want+"\n" {
		t.Errorf("template output = %q", out.String())
	}

	dir := t.TempDir()
	if err := runTemplate(testApp(t), []string{"課題1"}, dir, &bytes.Buffer{}); err != nil {
		t.Fatalf("runTemplate to dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "課題1.c")); err != nil {
		t.Errorf("template file not written: %v", err)
	}

	if code := exitCode(runTemplate(testApp(t), []string{"課題9"}, "", &bytes.Buffer{})); code != verdict.ExitError {
		t.Errorf("unknown template should exit 1, got %d", code)
	}
}

// feedbackProvider returns a fixed feedback string.
type feedbackProvider struct {
	text string
}

func (p feedbackProvider) Complete(context.Context, string, string, int, float64) (string, error) {
	return p.text, nil
}

func TestReview(t *testing.T) {
	orig := llm.NewProvider
	llm.NewProvider = func(_, _ string) (llm.Provider, error) {
		return feedbackProvider{text: "3行目の文末にセミコロンを付けましょう。"}, nil
	}
	t.Cleanup(func() { llm.NewProvider = orig })

	f := reviewFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}}
	var out bytes.Buffer
	err := runReview(context.Background(), testApp(t), f, testdata+"violations.c", &out)
	if code := exitCode(err); code != verdict.ExitViolations {
		t.Fatalf("expected exit 2 from the checker verdict, got %d: %v", code, err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "コーディング規約違反レポート\n") {
		t.Errorf("review should start with the checker report:\n%s", got)
	}
	if !strings.Contains(got, "--- feedback (anthropic, standard) ---\n3行目の文末にセミコロンを付けましょう。\n") {
		t.Errorf("missing feedback block:\n%s", got)
	}
}

func TestReview_UnknownProfile(t *testing.T) {
	f := reviewFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}, profileName: "harsh"}
	err := runReview(context.Background(), testApp(t), f, testdata+"clean.c", &bytes.Buffer{})
	if code := exitCode(err); code != verdict.ExitError {
		t.Errorf("expected exit 1, got %d", code)
	}
}

func TestWatchTargets(t *testing.T) {
	files, dirs, err := watchTargets("a/x.c", "a/rules.txt", "", "b/s.txt")
	if err != nil {
		t.Fatalf("watchTargets: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("expected 3 files, got %v", files)
	}
	if len(dirs) != 2 {
		t.Errorf("expected 2 dirs, got %v", dirs)
	}

	abs, _ := filepath.Abs("a/x.c")
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "a/x.c", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: abs, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a/x.c", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "a/other.c", Op: fsnotify.Write}, false},
	}
	for _, c := range cases {
		if got := relevant(c.ev, files); got != c.want {
			t.Errorf("relevant(%v) = %v, want %v", c.ev, got, c.want)
		}
	}
}

func TestWatch_InitialRunThenStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := checkFlags{ruleFlags: ruleFlags{rules: testdata + "rules.txt"}, format: formatText, jobs: 1, noColor: true}
	if err := runWatch(ctx, testApp(t), f, testdata+"clean.c", &bytes.Buffer{}); err != nil {
		t.Fatalf("runWatch should stop cleanly on cancellation, got %v", err)
	}
}
