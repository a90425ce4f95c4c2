package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/openai/openai-go"

	"github.com/dshills/stylecheck/internal/logging"
	"github.com/dshills/stylecheck/internal/profile"
	"github.com/dshills/stylecheck/internal/schema"
	"github.com/dshills/stylecheck/internal/verdict"
)

// mockProvider is a test double for Provider.
type mockProvider struct {
	responses []string // returned in order; last entry is repeated if list exhausted
	err       error
	callCount int
	lastUser  string
	lastSys   string
}

func (m *mockProvider) Complete(_ context.Context, sys, user string, _ int, _ float64) (string, error) {
	m.lastSys, m.lastUser = sys, user
	if m.err != nil {
		m.callCount++
		return "", m.err
	}
	if len(m.responses) == 0 {
		m.callCount++
		return "", fmt.Errorf("mockProvider: no responses configured")
	}
	idx := m.callCount
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.callCount++
	return m.responses[idx], nil
}

// installMock replaces NewProvider with a factory returning mp, and restores
// the original after the test.
func installMock(t *testing.T, mp *mockProvider) {
	t.Helper()
	orig := NewProvider
	NewProvider = func(_, _ string) (Provider, error) { return mp, nil }
	t.Cleanup(func() { NewProvider = orig })
}

func loadProfile(t *testing.T, name string) profile.Profile {
	t.Helper()
	prof, err := profile.Load(name)
	if err != nil {
		t.Fatalf("profile.Load(%q): %v", name, err)
	}
	return prof
}

func testRequest() Request {
	src := "#include <stdio.h>\nint x = 5\n"
	secondary := "変数名は分かりやすく"
	return Request{
		FileName:       "hello.c",
		Source:         src,
		PrimaryRules:   "インデントは4スペース",
		SecondaryRules: &secondary,
		Result:         verdict.Check(schema.Input{Source: src, PrimaryRules: "インデントは4スペース", SecondaryRules: &secondary}),
	}
}

var testOpts = Options{Provider: "anthropic", Model: "test-model", MaxTokens: 100, Temperature: 0.2}

func TestReview_ValidResponse(t *testing.T) {
	mp := &mockProvider{responses: []string{"  2行目にセミコロンがありません。  \n"}}
	installMock(t, mp)

	got, err := Review(context.Background(), testRequest(), loadProfile(t, "standard"), testOpts, logging.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "2行目にセミコロンがありません。" {
		t.Errorf("feedback = %q", got)
	}
	if mp.callCount != 1 {
		t.Errorf("expected 1 provider call, got %d", mp.callCount)
	}
}

func TestReview_RetryOnEmpty(t *testing.T) {
	mp := &mockProvider{responses: []string{"   ", "feedback"}}
	installMock(t, mp)

	got, err := Review(context.Background(), testRequest(), loadProfile(t, "gentle"), testOpts, logging.Nop())
	if err != nil {
		t.Fatalf("expected retry to succeed, got error: %v", err)
	}
	if got != "feedback" {
		t.Errorf("feedback = %q", got)
	}
	if mp.callCount != 2 {
		t.Errorf("expected 2 provider calls (initial + retry), got %d", mp.callCount)
	}
	if !strings.Contains(mp.lastUser, "previous response was empty") {
		t.Error("retry prompt should carry the reminder")
	}
}

func TestReview_BothEmpty(t *testing.T) {
	mp := &mockProvider{responses: []string{""}}
	installMock(t, mp)

	_, err := Review(context.Background(), testRequest(), loadProfile(t, "standard"), testOpts, logging.Nop())
	if !errors.Is(err, ErrEmptyFeedback) {
		t.Errorf("expected ErrEmptyFeedback, got %v", err)
	}
}

func TestReview_ProviderError(t *testing.T) {
	sentinel := errors.New("simulated API error")
	installMock(t, &mockProvider{err: sentinel})

	_, err := Review(context.Background(), testRequest(), loadProfile(t, "standard"), testOpts, logging.Nop())
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestReview_FactoryError(t *testing.T) {
	orig := NewProvider
	NewProvider = func(_, _ string) (Provider, error) { return nil, errors.New("no key") }
	t.Cleanup(func() { NewProvider = orig })

	if _, err := Review(context.Background(), testRequest(), loadProfile(t, "standard"), testOpts, logging.Nop()); err == nil {
		t.Fatal("expected error from provider factory")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	req := testRequest()
	p := buildUserPrompt(req)
	for _, want := range []string{
		"PRIMARY RULES:\nインデントは4スペース\n",
		"SECONDARY RULES:\n変数名は分かりやすく\n",
		"SOURCE hello.c",
		"   2 | int x = 5\n",
		req.Result.ReportContent,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p)
		}
	}

	req.SecondaryRules = nil
	if strings.Contains(buildUserPrompt(req), "SECONDARY RULES") {
		t.Error("secondary section should be omitted when no secondary rules are given")
	}
}

func TestBuildSystemPrompt_Profiles(t *testing.T) {
	strict := buildSystemPrompt(loadProfile(t, "strict"))
	if !strings.Contains(strict, "Do not include corrected code.") {
		t.Error("strict profile should forbid corrected code")
	}
	standard := buildSystemPrompt(loadProfile(t, "standard"))
	if strings.Contains(standard, "Do not include corrected code.") {
		t.Error("standard profile should allow fixes")
	}
	if !strings.Contains(standard, "authoritative") {
		t.Error("system prompt should state the checker is authoritative")
	}
}

func TestCleanFeedback(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"```\nfenced\n```", "fenced"},
		{"~~~text\nbody line\n~~~\n", "body line"},
		{"intro\n```c\nint x;\n```", "intro\n```c\nint x;\n```"},
	}
	for _, c := range cases {
		if got := cleanFeedback(c.in); got != c.want {
			t.Errorf("cleanFeedback(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDefaultNewProvider_Unknown(t *testing.T) {
	if _, err := defaultNewProvider("mystery", "m"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestDefaultNewProvider_MissingKey(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "google"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(APIKeyEnv(name), "")
			if _, err := defaultNewProvider(name, "m"); err == nil {
				t.Errorf("expected error when %s is unset", APIKeyEnv(name))
			}
		})
	}
}

func TestChoiceFeedback(t *testing.T) {
	cases := []struct {
		name    string
		resp    *openai.ChatCompletion
		want    string
		wantErr bool
	}{
		{"no choices", &openai.ChatCompletion{}, "", true},
		{"content", &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "good work"}},
		}}, "good work", false},
		{"refusal", &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Refusal: "no"}},
		}}, "", true},
		{"empty content", &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{{}}}, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := choiceFeedback(c.resp)
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if got != c.want {
				t.Errorf("feedback = %q, want %q", got, c.want)
			}
		})
	}
}

func TestCandidateFeedback(t *testing.T) {
	cases := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{"nil", nil, "", true},
		{"blocked", &genai.GenerateContentResponse{
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		}, "", true},
		{"first candidate with content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("good "), genai.Text("work")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		}}, "good work", false},
		{"no candidates", &genai.GenerateContentResponse{}, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := candidateFeedback(c.resp)
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if got != c.want {
				t.Errorf("feedback = %q, want %q", got, c.want)
			}
		})
	}
}
