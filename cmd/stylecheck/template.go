package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/stylecheck/internal/export"
	"github.com/dshills/stylecheck/internal/templates"
)

func newTemplateCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "template [課題N]",
		Short: "List assignment templates or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(a, args, outDir, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write the template to <dir>/<課題N>.c instead of stdout")
	return cmd
}

func runTemplate(a *app, args []string, outDir string, w io.Writer) error {
	if len(args) == 0 {
		for _, label := range templates.Labels() {
			if _, err := fmt.Fprintln(w, label); err != nil {
				return failWith(err)
			}
		}
		return nil
	}

	content, err := templates.Get(args[0])
	if err != nil {
		return failWith(err)
	}
	if outDir == "" {
		if _, err := fmt.Fprintln(w, content); err != nil {
			return failWith(err)
		}
		return nil
	}
	path, err := export.Write(outDir, export.Template(args[0], content))
	if err != nil {
		return failWith(err)
	}
	a.log.Infow("template written", "file", path)
	return nil
}
