// Package llm handles LLM provider communication for the optional review
// command: prompt construction, the provider call, and a single retry when
// the model returns no usable feedback. It never alters a CheckResult.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/dshills/stylecheck/internal/profile"
	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
)

// ErrEmptyFeedback is returned when both the initial and retry responses are
// blank.
var ErrEmptyFeedback = errors.New("llm: empty feedback after retry")

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// Options configures a Review call.
type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Request carries everything the reviewer is shown. Result must come from the
// deterministic checker; the model explains it and does not re-grade.
type Request struct {
	FileName       string
	Source         string
	PrimaryRules   string
	SecondaryRules *string
	Result         schema.CheckResult
}

// Review asks the configured provider for tutor-style feedback on req.
func Review(ctx context.Context, req Request, prof profile.Profile, opts Options, log *zap.SugaredLogger) (string, error) {
	provider, err := NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return "", fmt.Errorf("llm: create provider: %w", err)
	}

	sysPrompt := buildSystemPrompt(prof)
	userPrompt := buildUserPrompt(req)
	log.Debugw("review prompt built",
		"provider", opts.Provider,
		"model", opts.Model,
		"profile", prof.Name,
		"system_bytes", len(sysPrompt),
		"user_bytes", len(userPrompt))

	raw, err := provider.Complete(ctx, sysPrompt, userPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}
	if text := cleanFeedback(raw); text != "" {
		return text, nil
	}

	log.Debugw("empty feedback, retrying once")
	raw2, err := provider.Complete(ctx, sysPrompt, buildRetryPrompt(userPrompt), opts.MaxTokens, opts.Temperature)
	if err != nil {
		return "", fmt.Errorf("llm: retry complete: %w", err)
	}
	if text := cleanFeedback(raw2); text != "" {
		return text, nil
	}
	return "", ErrEmptyFeedback
}

// fenceRe matches a response wrapped entirely in one markdown code fence
// (``` or ~~~) and captures the body.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// cleanFeedback trims the response and unwraps it when the model put the
// whole answer inside a single code fence.
func cleanFeedback(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// buildSystemPrompt assembles the LLM system prompt.
func buildSystemPrompt(prof profile.Profile) string {
	var sb strings.Builder

	sb.WriteString("You are a teaching assistant for an introductory C programming course.\n\n")
	sb.WriteString("A deterministic style checker has already graded the student's file. " +
		"Its violation list is authoritative: do not add, remove, or re-grade violations, " +
		"and do not claim the file passes or fails differently from the checker.\n\n")
	sb.WriteString("Refer to code by line number. Answer in the language the rule documents " +
		"are written in. Output plain text, no JSON.\n\n")
	if !prof.IncludeFixes {
		sb.WriteString("Do not include corrected code.\n\n")
	}
	if prof.SystemPromptAddendum != "" {
		sb.WriteString(prof.SystemPromptAddendum)
		sb.WriteString("\n")
	}
	return sb.String()
}

// buildUserPrompt assembles the LLM user prompt.
func buildUserPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("PRIMARY RULES:\n")
	sb.WriteString(strings.TrimSpace(req.PrimaryRules))
	sb.WriteString("\n")
	if req.SecondaryRules != nil {
		sb.WriteString("\nSECONDARY RULES:\n")
		sb.WriteString(strings.TrimSpace(*req.SecondaryRules))
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nSOURCE %s (with line numbers):\n", req.FileName)
	for i, line := range ruledoc.SplitLines(req.Source) {
		fmt.Fprintf(&sb, "%4d | %s\n", i+1, strings.TrimRight(line, "\r"))
	}

	sb.WriteString("\nCHECKER REPORT:\n")
	sb.WriteString(req.Result.ReportContent)
	sb.WriteString("\n\nWrite the feedback now.")
	return sb.String()
}

// buildRetryPrompt repeats the original prompt with a reminder.
func buildRetryPrompt(originalUserPrompt string) string {
	return originalUserPrompt + "\n\nYour previous response was empty. Please write the feedback as plain text."
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", providerName)
	}
}

// APIKeyEnv returns the environment variable holding the API key for a
// provider, or "" for unknown providers.
func APIKeyEnv(providerName string) string {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// ── Anthropic provider ───────────────────────────────────────────────────────

// anthropicProvider implements Provider using the Anthropic SDK.
// anthropic.Client is a value type; the SDK's NewClient returns it by value.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(model string) (Provider, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY environment variable not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := os.Getenv("ANTHROPIC_BASE_URL"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...), model: model}, nil
}

func (p *anthropicProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages.new: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic: response contained no text content blocks")
	}
	return strings.Join(parts, ""), nil
}
