package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/stylecheck/internal/discover"
	"github.com/dshills/stylecheck/internal/llm"
	"github.com/dshills/stylecheck/internal/profile"
	"github.com/dshills/stylecheck/internal/verdict"
)

type reviewFlags struct {
	ruleFlags
	provider    string
	model       string
	profileName string
}

func newReviewCmd(a *app) *cobra.Command {
	f := reviewFlags{}
	cmd := &cobra.Command{
		Use:   "review <source.c>",
		Short: "Check a source, then ask an LLM to explain the violations",
		Long: "Review prints the checker's report followed by tutor-style feedback from the\n" +
			"configured LLM provider (anthropic, openai or google). The feedback is\n" +
			"advisory; the exit status is decided by the checker alone.\n\n" +
			"Profiles: " + strings.Join(profile.Names(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd.Context(), a, f, args[0], cmd.OutOrStdout())
		},
	}
	addRuleFlags(cmd, &f.ruleFlags)
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider (default from settings)")
	cmd.Flags().StringVar(&f.model, "model", "", "model name (default from settings)")
	cmd.Flags().StringVar(&f.profileName, "profile", "", "feedback profile (default from settings)")
	return cmd
}

func runReview(ctx context.Context, a *app, f reviewFlags, path string, w io.Writer) error {
	opts := llm.Options{
		Provider:    firstNonEmpty(f.provider, a.settings.Review.Provider),
		Model:       firstNonEmpty(f.model, a.settings.Review.Model),
		MaxTokens:   a.settings.Review.MaxTokens,
		Temperature: a.settings.Review.EffectiveTemperature(),
	}
	prof, err := profile.Load(firstNonEmpty(f.profileName, a.settings.Review.Profile))
	if err != nil {
		return failWith(err)
	}

	a.log.Debugw("review configured",
		"provider", opts.Provider,
		"model", opts.Model,
		"profile", prof.Name,
		"key_env", llm.APIKeyEnv(opts.Provider))

	rs, err := loadRules(a, f.ruleFlags)
	if err != nil {
		return failWith(err)
	}
	files, err := loadSources(a, []discover.Source{discover.File(path)})
	if err != nil {
		return failWith(err)
	}
	reports, err := evaluate(ctx, a, rs, files, 1)
	if err != nil {
		return failWith(err)
	}
	result := reports[0].Result

	feedback, err := llm.Review(ctx, llm.Request{
		FileName:       files[0].Name,
		Source:         files[0].Content,
		PrimaryRules:   rs.primary.Content,
		SecondaryRules: rs.secondaryText(),
		Result:         result,
	}, prof, opts, a.log)
	if err != nil {
		return failWith(err)
	}

	if _, err := fmt.Fprintf(w, "%s\n\n--- feedback (%s, %s) ---\n%s\n",
		strings.TrimRight(result.ReportContent, "\n"), opts.Provider, prof.Name, feedback); err != nil {
		return failWith(fmt.Errorf("write output: %w", err))
	}

	if code := verdict.ExitCode(result); code != verdict.ExitCorrect {
		return &exitError{code: code}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
