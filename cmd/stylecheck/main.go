package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/stylecheck/internal/config"
	"github.com/dshills/stylecheck/internal/logging"
	"github.com/dshills/stylecheck/internal/verdict"
)

const (
	toolName    = "stylecheck"
	toolVersion = "0.1.0"
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// failWith wraps err as an ExitError result.
func failWith(err error) error {
	return &exitError{code: verdict.ExitError, err: err}
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	debug      bool
	timeout    time.Duration
}

// app is the state built once per invocation from config and flags.
type app struct {
	settings *config.Settings
	log      *zap.SugaredLogger
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return verdict.ExitCorrect
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(os.Stderr, err)
	return verdict.ExitError
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:           toolName,
		Short:         "Coding-convention checker for introductory C assignments",
		Version:       toolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := buildApp(rf, cmd.Flags().Changed("debug"), cmd.Flags().Changed("timeout"))
			if err != nil {
				return failWith(err)
			}
			*a = *loaded
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rf.configFile, "config", "", "settings file (default: global + ./.stylecheck.yaml)")
	pf.BoolVar(&rf.debug, "debug", false, "log input sizes, rule counts and timing to stderr")
	pf.DurationVar(&rf.timeout, "timeout", config.DefaultTimeout, "evaluation timeout")

	root.AddCommand(
		newCheckCmd(a),
		newFixCmd(a),
		newTemplateCmd(a),
		newReviewCmd(a),
		newWatchCmd(a),
	)
	return root
}

// buildApp loads settings and applies flag overrides.
func buildApp(rf *rootFlags, debugSet, timeoutSet bool) (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	settings, err := config.Load(rf.configFile, wd)
	if err != nil {
		return nil, err
	}
	if debugSet {
		settings.Debug = rf.debug
	}
	if timeoutSet {
		if rf.timeout <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %s", rf.timeout)
		}
		settings.Timeout = rf.timeout
	}
	log, err := logging.New(settings.Debug)
	if err != nil {
		return nil, err
	}
	log.Debugw("settings loaded",
		"config", rf.configFile,
		"timeout", settings.Timeout,
		"max_file_size", settings.MaxFileSize,
		"color", settings.Color)
	return &app{settings: settings, log: log}, nil
}
