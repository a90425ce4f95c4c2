// Package checker schedules evaluations for callers: it runs the pure
// verdict.Check under a context deadline and fans out over many sources.
package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/stylecheck/internal/schema"
	"github.com/dshills/stylecheck/internal/verdict"
)

// ErrTimeout is returned when an evaluation does not finish before the
// context deadline. It is a "cannot evaluate" outcome, never a violation.
var ErrTimeout = errors.New("checker: evaluation timed out")

// CheckFunc evaluates one input. It is a package-level variable so tests can
// substitute a slow or counting implementation; restore it with t.Cleanup.
var CheckFunc = verdict.Check

// Job is one named evaluation request.
type Job struct {
	Name  string
	Input schema.Input
}

// Outcome pairs a job name with its result.
type Outcome struct {
	Name   string
	Result schema.CheckResult
}

// Run evaluates in on a separate goroutine and waits for it or for ctx.
// The evaluation itself has no cancellation points; on timeout its result is
// discarded.
func Run(ctx context.Context, in schema.Input, log *zap.SugaredLogger) (schema.CheckResult, error) {
	start := time.Now()
	done := make(chan schema.CheckResult, 1)
	go func() { done <- CheckFunc(in) }()

	select {
	case r := <-done:
		log.Debugw("evaluation finished",
			"source_bytes", len(in.Source),
			"secondary", in.SecondaryRules != nil,
			"violations", len(r.Violations),
			"elapsed", time.Since(start))
		return r, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return schema.CheckResult{}, ErrTimeout
		}
		return schema.CheckResult{}, fmt.Errorf("checker: %w", ctx.Err())
	}
}

// RunBatch evaluates jobs concurrently, at most limit at a time (limit <= 0
// means unbounded), and returns outcomes in job order. The first failure
// cancels the remaining jobs.
func RunBatch(ctx context.Context, jobs []Job, limit int, log *zap.SugaredLogger) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			r, err := Run(gCtx, job.Input, log.With("file", job.Name))
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			outcomes[i] = Outcome{Name: job.Name, Result: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
