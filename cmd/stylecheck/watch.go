package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	f := checkFlags{format: formatText, jobs: 1}
	cmd := &cobra.Command{
		Use:   "watch <source.c>",
		Short: "Re-run check whenever the source or a rule document is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), a, f, args[0], cmd.OutOrStdout())
		},
	}
	addRuleFlags(cmd, &f.ruleFlags)
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable coloured output")
	return cmd
}

// watchTargets returns the cleaned absolute paths of the files to watch and
// the set of directories containing them. Directories are watched instead of
// files so that editors which save by rename keep triggering events.
func watchTargets(paths ...string) (files map[string]bool, dirs []string, err error) {
	files = make(map[string]bool, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("watch: resolve %s: %w", p, err)
		}
		files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return files, dirs, nil
}

// relevant reports whether ev changes one of the watched files.
func relevant(ev fsnotify.Event, files map[string]bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return files[abs]
}

func runWatch(ctx context.Context, a *app, f checkFlags, path string, w io.Writer) error {
	files, dirs, err := watchTargets(path, f.rules, f.secondary)
	if err != nil {
		return failWith(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return failWith(fmt.Errorf("watch: create watcher: %w", err))
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return failWith(fmt.Errorf("watch: add %s: %w", dir, err))
		}
	}

	once := func() {
		err := runCheck(ctx, a, f, []string{path}, w)
		var ee *exitError
		if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
			a.log.Warnw("check failed", "error", err)
		}
	}
	once()
	a.log.Infow("watching for changes", "files", len(files), "dirs", dirs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(ev, files) {
				a.log.Debugw("change detected", "file", ev.Name, "op", ev.Op.String())
				pending = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warnw("watcher error", "error", err)
		case <-pending:
			pending = nil
			fmt.Fprintf(w, "\n[%s] re-checking %s\n", time.Now().Format("15:04:05"), path)
			once()
		}
	}
}
