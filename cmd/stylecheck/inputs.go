package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/stylecheck/internal/checker"
	"github.com/dshills/stylecheck/internal/discover"
	"github.com/dshills/stylecheck/internal/ruledoc"
	"github.com/dshills/stylecheck/internal/schema"
	"github.com/dshills/stylecheck/internal/source"
)

// ruleFlags selects the rule documents for a run.
type ruleFlags struct {
	rules     string
	secondary string
}

func addRuleFlags(cmd *cobra.Command, f *ruleFlags) {
	cmd.Flags().StringVar(&f.rules, "rules", "", "primary rule document (.txt, required)")
	cmd.Flags().StringVar(&f.secondary, "secondary", "", "secondary rule document (.txt)")
}

// ruleSet is a loaded pair of rule documents.
type ruleSet struct {
	primary   *source.File
	secondary *source.File
}

// secondaryText returns the secondary document text, or nil when absent.
func (r ruleSet) secondaryText() *string {
	if r.secondary == nil {
		return nil
	}
	s := r.secondary.Content
	return &s
}

// input pairs a source text with the rule documents.
func (r ruleSet) input(src string) schema.Input {
	return schema.Input{
		Source:         src,
		PrimaryRules:   r.primary.Content,
		SecondaryRules: r.secondaryText(),
	}
}

func loadRules(a *app, f ruleFlags) (ruleSet, error) {
	if f.rules == "" {
		return ruleSet{}, fmt.Errorf("--rules is required")
	}
	opts := source.Options{MaxSize: a.settings.MaxFileSize}

	var rs ruleSet
	var err error
	if rs.primary, err = source.Load(f.rules, source.KindPrimaryRules, opts); err != nil {
		return ruleSet{}, err
	}
	if f.secondary != "" {
		if rs.secondary, err = source.Load(f.secondary, source.KindSecondaryRules, opts); err != nil {
			return ruleSet{}, err
		}
	}
	a.log.Debugw("rules loaded",
		"primary", rs.primary.Path,
		"primary_encoding", rs.primary.Encoding,
		"primary_rule_lines", len(ruledoc.Parse(rs.primary.Content)),
		"secondary", f.secondary)
	if rs.secondary != nil {
		a.log.Debugw("secondary rules loaded",
			"encoding", rs.secondary.Encoding,
			"rule_lines", len(ruledoc.Parse(rs.secondary.Content)))
	}
	return rs, nil
}

// loadSources loads every discovered source. Each file's Name is replaced
// by its discovered label so same-named files in different directories stay
// distinct in reports and exports.
func loadSources(a *app, srcs []discover.Source) ([]*source.File, error) {
	opts := source.Options{MaxSize: a.settings.MaxFileSize}
	files := make([]*source.File, 0, len(srcs))
	for _, s := range srcs {
		f, err := source.Load(s.Path, source.KindSource, opts)
		if err != nil {
			return nil, err
		}
		f.Name = s.Name
		a.log.Debugw("source loaded", "path", f.Path, "encoding", f.Encoding, "bytes", f.Size)
		files = append(files, f)
	}
	return files, nil
}

// jobsFor builds one checker job per source file.
func jobsFor(rs ruleSet, files []*source.File) []checker.Job {
	jobs := make([]checker.Job, len(files))
	for i, f := range files {
		jobs[i] = checker.Job{Name: f.Name, Input: rs.input(f.Content)}
	}
	return jobs
}
