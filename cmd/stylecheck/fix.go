package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/stylecheck/internal/annotate"
	"github.com/dshills/stylecheck/internal/checker"
	"github.com/dshills/stylecheck/internal/discover"
	"github.com/dshills/stylecheck/internal/export"
	"github.com/dshills/stylecheck/internal/patch"
)

type fixFlags struct {
	ruleFlags
	out    string
	outDir string
	diff   bool
}

func newFixCmd(a *app) *cobra.Command {
	f := fixFlags{}
	cmd := &cobra.Command{
		Use:   "fix <source.c>",
		Short: "Append missing semicolons and re-indent lines flagged by check",
		Long: "Fix checks the source, then applies the mechanical corrections for missing\n" +
			"semicolons and indentation. Other violations are left for the student.\n" +
			"The result goes to stdout unless --out or --out-dir is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd.Context(), a, f, args[0], cmd.OutOrStdout())
		},
	}
	addRuleFlags(cmd, &f.ruleFlags)
	cmd.Flags().StringVar(&f.out, "out", "", "write the corrected source to this file")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "write the corrected source to this directory under a timestamped name")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "print a unified diff of the corrections instead of the corrected source")
	return cmd
}

func runFix(ctx context.Context, a *app, f fixFlags, path string, w io.Writer) error {
	if (f.out != "" && f.outDir != "") || (f.diff && (f.out != "" || f.outDir != "")) {
		return failWith(fmt.Errorf("--out, --out-dir and --diff are mutually exclusive"))
	}
	rs, err := loadRules(a, f.ruleFlags)
	if err != nil {
		return failWith(err)
	}
	files, err := loadSources(a, []discover.Source{discover.File(path)})
	if err != nil {
		return failWith(err)
	}
	src := files[0]

	reports, err := evaluate(ctx, a, rs, files, 1)
	if err != nil {
		return failWith(err)
	}
	before := reports[0].Result

	corrected := src.Content
	if !before.IsCorrect {
		corrected = annotate.AttemptAutoCorrection(src.Content, before.Violations)
	}

	after, err := checker.Run(ctx, rs.input(corrected), a.log)
	if err != nil {
		return failWith(err)
	}
	a.log.Infow("auto-correction applied",
		"file", src.Name,
		"violations_before", len(before.Violations),
		"violations_after", len(after.Violations))

	switch {
	case f.diff:
		d, err := patch.Unified(src.Name, src.Content, corrected)
		if err != nil {
			return failWith(err)
		}
		if _, err := io.WriteString(w, d); err != nil {
			return failWith(fmt.Errorf("write output: %w", err))
		}
	case f.out != "":
		if err := os.WriteFile(f.out, []byte(corrected), 0o644); err != nil {
			return failWith(fmt.Errorf("write %s: %w", f.out, err))
		}
	case f.outDir != "":
		out, err := export.Write(f.outDir, export.Corrected(src.Name, corrected))
		if err != nil {
			return failWith(err)
		}
		a.log.Infow("exported", "file", out)
	default:
		if _, err := io.WriteString(w, corrected); err != nil {
			return failWith(fmt.Errorf("write output: %w", err))
		}
	}
	return nil
}
