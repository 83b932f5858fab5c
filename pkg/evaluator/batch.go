package evaluator

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/value"
)

// Outcome is the result of evaluating one event of a batch.
type Outcome struct {
	// Value is the program result, nil when Err is set.
	Value value.Value
	// Err is the evaluation error, or the context error for events that
	// were never started.
	Err error
}

// EvaluateBatch evaluates program against every target, at most
// Options.Concurrency at a time. Targets must be distinct. The returned
// slice is parallel to targets.
//
// ctx is checked before each event is started; an event already running is
// finished. The error aggregates the failure of every event, each wrapped
// with its index, and is nil only when all events succeeded.
func (e *Evaluator) EvaluateBatch(ctx context.Context, program *compiler.Program, targets []value.Target) ([]Outcome, error) {
	if program == nil {
		return nil, ErrNilProgram
	}

	outcomes := make([]Outcome, len(targets))
	started := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, target := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started[i] = true
			v, err := e.Evaluate(gctx, program, target)
			outcomes[i] = Outcome{Value: v, Err: err}
			return nil
		})
	}
	cancelErr := g.Wait()
	if cancelErr == nil {
		cancelErr = ctx.Err()
	}

	var errs error
	failed, skipped := 0, 0
	for i := range outcomes {
		if !started[i] {
			outcomes[i].Err = cancelErr
			skipped++
			continue
		}
		if err := outcomes[i].Err; err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("event %d: %w", i, err))
		}
	}
	if skipped > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%d events not evaluated: %w", skipped, cancelErr))
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.Batches.WithLabelValues(batchLabel(failed, skipped)).Inc()
	}
	e.logger.DebugContext(ctx, "batch evaluated",
		"events", len(targets),
		"failed", failed,
		"skipped", skipped)

	return outcomes, errs
}

func batchLabel(failed, skipped int) string {
	switch {
	case skipped > 0:
		return LabelCanceled
	case failed > 0:
		return LabelError
	}
	return LabelSuccess
}
