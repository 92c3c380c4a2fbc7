package pipeline

import (
	"context"
	"log/slog"

	"github.com/ignacioe7/tripscan/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step recording its counters on
// the shared run report.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation and the report to update.
	// Returns an error if the step fails critically; non-critical
	// failures (a skipped page, a failed inference batch) are recorded on
	// the report and return nil.
	Do(ctx context.Context, report *model.RunReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails. Failed steps are logged and their errors recorded on
// the report, but subsequent steps still execute.
//
// Design decision: the default is to stop, because a failed discovery or
// extraction leaves later stages with nothing meaningful to do, and a
// Blocked site must stop the run outright. Continue-on-error exists for
// reprocessing flows where classification and aggregation should run over
// whatever earlier stages managed to store.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence. The report is always stamped
// as finished, even when a step fails or the context is canceled, so callers
// can print a run summary in every case.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps handle their own cancellation between units of work.
// Returns the first error encountered if continueOnError is false.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	defer report.Finish()

	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.AddError("run cancelled before " + step.Name())
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			report.AddError(step.Name() + ": " + err.Error())

			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.logger.Debug("step completed", "step", step.Name())
	}
	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
