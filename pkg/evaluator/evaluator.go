// Package evaluator runs compiled remap programs against events.
//
// A compiled program is immutable; the Evaluator gives every evaluation a
// fresh runtime.Context configured from its options, selects the execution
// strategy, records metrics and logs failures.
//
// # Example
//
//	ev, err := evaluator.New(evaluator.WithTimezone(loc))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := ev.Evaluate(ctx, res.Program, value.NewEvent(event))
//
// # Concurrency
//
// An Evaluator is safe for concurrent use. EvaluateBatch spreads a slice of
// events over a bounded number of goroutines:
//
//	outcomes, err := ev.EvaluateBatch(ctx, res.Program, targets)
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"time"

	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Runner executes a compiled program with one strategy.
type Runner interface {
	Run(ctx *runtime.Context, program *compiler.Program, target value.Target) (value.Value, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx *runtime.Context, program *compiler.Program, target value.Target) (value.Value, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx *runtime.Context, program *compiler.Program, target value.Target) (value.Value, error) {
	return f(ctx, program, target)
}

var runners = map[runtime.Strategy]Runner{
	runtime.AST: RunnerFunc(func(ctx *runtime.Context, program *compiler.Program, target value.Target) (value.Value, error) {
		return program.Evaluate(ctx, target)
	}),
}

// ErrNilProgram is returned when an evaluation is asked to run no program.
var ErrNilProgram = errors.New("evaluator: nil program")

// Options configures evaluator behavior.
type Options struct {
	// Strategy selects the runner. Defaults to runtime.DefaultStrategy.
	Strategy runtime.Strategy
	// Timezone is handed to every evaluation. Nil means UTC.
	Timezone *time.Location
	// Clock replaces time.Now for the now() built-in.
	Clock func() time.Time
	// Logger for structured logging.
	Logger *slog.Logger
	// Debug logs successful evaluations as well as failed ones.
	Debug bool
	// Metrics, when set, records every evaluation.
	Metrics *Metrics
	// Concurrency bounds the goroutines used by EvaluateBatch.
	Concurrency int
}

// defaultConcurrency is the default value of Options.Concurrency. It is
// lowered to 1 on WebAssembly targets by evaluator_wasm.go.
var defaultConcurrency = goruntime.GOMAXPROCS(0)

// Option configures an Evaluator.
type Option func(*Options)

// WithStrategy selects the execution strategy.
func WithStrategy(s runtime.Strategy) Option {
	return func(opts *Options) {
		opts.Strategy = s
	}
}

// WithTimezone sets the timezone used by time functions.
func WithTimezone(loc *time.Location) Option {
	return func(opts *Options) {
		opts.Timezone = loc
	}
}

// WithClock replaces the wall clock seen by programs.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithDebug enables or disables logging of successful evaluations.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}

// WithMetrics records evaluations in m.
func WithMetrics(m *Metrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithConcurrency sets how many events EvaluateBatch evaluates at once.
// Values below 1 select the default.
func WithConcurrency(n int) Option {
	return func(opts *Options) {
		opts.Concurrency = n
	}
}

// Evaluator evaluates compiled programs against targets.
type Evaluator struct {
	opts   Options
	logger *slog.Logger
	runner Runner
}

// New creates a new Evaluator. It fails when the configured strategy has no
// runner.
func New(opts ...Option) (*Evaluator, error) {
	options := Options{
		Strategy:    runtime.DefaultStrategy,
		Concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Timezone == nil {
		options.Timezone = time.UTC
	}
	if options.Concurrency < 1 {
		options.Concurrency = defaultConcurrency
	}

	r, ok := runners[options.Strategy]
	if !ok {
		return nil, fmt.Errorf("evaluator: strategy %s: %w", options.Strategy, runtime.ErrUnknownStrategy)
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		runner: r,
	}, nil
}

// Options returns the effective options.
func (e *Evaluator) Options() Options {
	return e.opts
}

// NewContext returns a runtime.Context configured like the ones Evaluate
// uses, for callers that drive Program.Evaluate themselves.
func (e *Evaluator) NewContext(target value.Target) *runtime.Context {
	rc := runtime.NewContext(target, e.opts.Timezone)
	if e.opts.Clock != nil {
		rc.SetClock(e.opts.Clock)
	}
	return rc
}

// Evaluate runs program against target in a fresh context. ctx only
// carries logging attributes; a running evaluation is never interrupted.
func (e *Evaluator) Evaluate(ctx context.Context, program *compiler.Program, target value.Target) (value.Value, error) {
	return e.EvaluateWithLocals(ctx, program, target, nil)
}

// EvaluateWithLocals is like Evaluate but presets the given variables. The
// program must have been compiled with a state that declares them.
func (e *Evaluator) EvaluateWithLocals(ctx context.Context, program *compiler.Program, target value.Target, locals map[string]value.Value) (value.Value, error) {
	if program == nil {
		return nil, ErrNilProgram
	}

	rc := e.NewContext(target)
	for name, v := range locals {
		rc.SetLocal(name, v)
	}

	start := time.Now()
	out, err := e.runner.Run(rc, program, target)
	elapsed := time.Since(start)

	if e.opts.Metrics != nil {
		e.opts.Metrics.observe(e.opts.Strategy, err, elapsed)
	}

	if err != nil {
		e.logger.DebugContext(ctx, "evaluation failed",
			"code", errorCode(err),
			"error", err.Error(),
			"duration", elapsed)
		return nil, err
	}
	if e.opts.Debug {
		e.logger.DebugContext(ctx, "evaluation succeeded",
			"strategy", e.opts.Strategy,
			"duration", elapsed)
	}
	return out, nil
}

func errorCode(err error) types.ErrorCode {
	var ee *types.ExpressionError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return types.ErrRuntime
}
