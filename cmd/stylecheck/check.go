package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dshills/stylecheck/internal/checker"
	"github.com/dshills/stylecheck/internal/config"
	"github.com/dshills/stylecheck/internal/discover"
	"github.com/dshills/stylecheck/internal/export"
	"github.com/dshills/stylecheck/internal/render"
	"github.com/dshills/stylecheck/internal/schema"
	"github.com/dshills/stylecheck/internal/source"
	"github.com/dshills/stylecheck/internal/verdict"
)

// Output formats for check.
const (
	formatText     = "text"
	formatReport   = "report"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// checkFlags holds the check command's flags.
type checkFlags struct {
	ruleFlags
	format  string
	outDir  string
	noColor bool
	jobs    int
	exclude []string
}

func newCheckCmd(a *app) *cobra.Command {
	f := checkFlags{}
	cmd := &cobra.Command{
		Use:   "check <source.c|dir>...",
		Short: "Check C sources against the rule documents",
		Long: "Check evaluates each source against the primary (and optional secondary)\n" +
			"rule documents and prints the result. Directory operands are searched for\n" +
			".c files. Exit status is 0 when every source is correct, 2 when any source\n" +
			"has violations, and 1 on errors.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), a, f, args, cmd.OutOrStdout())
		},
	}
	addRuleFlags(cmd, &f.ruleFlags)
	cmd.Flags().StringVar(&f.format, "format", formatText, "output format: text, report, json, markdown")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "write the report and annotated source for each file to this directory")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable coloured output")
	cmd.Flags().IntVar(&f.jobs, "jobs", 4, "maximum number of sources checked concurrently")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "directory names to skip when walking directory operands")
	return cmd
}

// runCheck is the check command body. It returns an *exitError carrying
// ExitViolations when any source has violations.
func runCheck(ctx context.Context, a *app, f checkFlags, paths []string, w io.Writer) error {
	switch f.format {
	case formatText, formatReport, formatJSON, formatMarkdown:
	default:
		return failWith(fmt.Errorf("unknown format %q (want text, report, json or markdown)", f.format))
	}

	rs, err := loadRules(a, f.ruleFlags)
	if err != nil {
		return failWith(err)
	}
	srcs, err := discover.Sources(paths, f.exclude)
	if err != nil {
		return failWith(err)
	}
	files, err := loadSources(a, srcs)
	if err != nil {
		return failWith(err)
	}

	reports, err := evaluate(ctx, a, rs, files, f.jobs)
	if err != nil {
		return failWith(err)
	}

	if err := writeReports(w, reports, f.format, useColor(a, f.noColor, w)); err != nil {
		return failWith(err)
	}
	if f.outDir != "" {
		if err := exportReports(a, f.outDir, reports); err != nil {
			return failWith(err)
		}
	}

	results := make([]schema.CheckResult, len(reports))
	for i, r := range reports {
		results[i] = r.Result
	}
	if code := verdict.ExitCode(results...); code != verdict.ExitCorrect {
		return &exitError{code: code}
	}
	return nil
}

// evaluate runs the checker over files under the configured timeout and
// wraps each result in a Report.
func evaluate(ctx context.Context, a *app, rs ruleSet, files []*source.File, limit int) ([]schema.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout)
	defer cancel()

	outcomes, err := checker.RunBatch(ctx, jobsFor(rs, files), limit, a.log)
	if err != nil {
		if errors.Is(err, checker.ErrTimeout) {
			return nil, fmt.Errorf("evaluation did not finish within %s: %w", a.settings.Timeout, err)
		}
		return nil, err
	}

	reports := make([]schema.Report, len(outcomes))
	for i, o := range outcomes {
		reports[i] = schema.Report{
			Tool:    toolName,
			Version: toolVersion,
			File:    o.Name,
			Summary: verdict.Summarize(files[i].Content, o.Result),
			Result:  o.Result,
		}
	}
	return reports, nil
}

func writeReports(w io.Writer, reports []schema.Report, format string, color bool) error {
	var sb strings.Builder
	switch format {
	case formatJSON:
		b, err := render.RenderJSON(reports)
		if err != nil {
			return err
		}
		sb.Write(b)
		sb.WriteString("\n")
	case formatMarkdown:
		for i := range reports {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(render.RenderMarkdown(&reports[i]))
		}
	case formatReport:
		for i, r := range reports {
			if len(reports) > 1 {
				if i > 0 {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "==> %s <==\n", r.File)
			}
			sb.WriteString(r.Result.ReportContent)
			if !strings.HasSuffix(r.Result.ReportContent, "\n") {
				sb.WriteString("\n")
			}
		}
	default:
		for i := range reports {
			sb.WriteString(render.RenderTerminal(&reports[i], color))
		}
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// exportReports writes each report, and the annotated source when there are
// violations, into dir.
func exportReports(a *app, dir string, reports []schema.Report) error {
	for _, r := range reports {
		files := []export.File{export.Report(r.File, r.Result.ReportContent)}
		if r.Result.CorrectedCode != nil {
			files = append(files, export.Corrected(r.File, *r.Result.CorrectedCode))
		}
		for _, f := range files {
			path, err := export.Write(dir, f)
			if err != nil {
				return err
			}
			a.log.Infow("exported", "file", path, "type", f.Type, "mime", f.MIMEType(), "id", f.ID)
		}
	}
	return nil
}

// useColor reports whether terminal output to w should be coloured.
func useColor(a *app, noColor bool, w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch a.settings.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
