package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/contactscan/internal/model"
)

// Step is one per-page stage. Steps run in sequence and each one fills in its
// part of the PageResult.
type Step interface {
	// Do runs the step. Problems with the page content itself are logged and
	// degrade to empty output; an error means the page could not be processed.
	Do(ctx context.Context, res *model.PageResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs a fixed sequence of steps over one page.
// It holds no per-page state and is safe for concurrent use.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after one fails.
	continueOnError bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger for the pipeline.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The first error is still returned.
func WithContinueOnError(continueOnError bool) PipelineOption {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// NewPipeline creates a Pipeline running steps in order.
func NewPipeline(steps []Step, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		steps: append([]Step(nil), steps...),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Execute runs every step over res. Cancellation is checked between steps.
func (p *Pipeline) Execute(ctx context.Context, res *model.PageResult) error {
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"page", res.Page.SourceURL,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		if err := step.Do(ctx, res); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"page", res.Page.SourceURL,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}
		res.Steps = append(res.Steps, step.Name())
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
