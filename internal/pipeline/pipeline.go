package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/docmetrics/internal/model"
)

// State carries the intermediate results of one analysis run.
// Each run owns its State; steps fill it in order.
type State struct {
	// Filename is the name the input was submitted under.
	Filename string

	// Data is the raw DOCX content.
	Data []byte

	// Document is set by the load step.
	Document *model.Document

	// Tokens is set by the tokenize step.
	Tokens model.TokenStream

	// Metrics is set by the metrics step.
	Metrics model.Metrics

	// Report is set by the assemble step.
	Report *model.Report

	// Completed lists the steps that finished, in order.
	Completed []StepTiming
}

// StepTiming records how long a finished step took.
type StepTiming struct {
	Step     string
	Duration time.Duration
}

// CompletedSteps returns the names of the finished steps.
func (st *State) CompletedSteps() []string {
	names := make([]string, len(st.Completed))
	for i, c := range st.Completed {
		names[i] = c.Step
	}
	return names
}

// NewState creates the state for analyzing data.
func NewState(filename string, data []byte) *State {
	return &State{Filename: filename, Data: data}
}

// Step is one stage of an analysis. A step reads the results of the
// steps before it from the State and adds its own.
type Step interface {
	Do(ctx context.Context, st *State) error
	Name() string
}

// Pipeline runs steps in order and stops at the first failure, since
// every step depends on its predecessors.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
	clock  func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStepClock sets the clock used to time steps.
func WithStepClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

// AddSteps appends steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs the steps in sequence. The context is checked before each
// step; a cancelled run clears any report and returns ctx.Err().
func (p *Pipeline) Execute(ctx context.Context, st *State) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis cancelled", "step", step.Name(), "file", st.Filename, "reason", err)
			st.Report = nil
			return err
		}

		start := p.clock()
		if err := step.Do(ctx, st); err != nil {
			p.logger.Debug("step failed", "step", step.Name(), "file", st.Filename, "error", err)
			return err
		}
		elapsed := p.clock().Sub(start)
		st.Completed = append(st.Completed, StepTiming{Step: step.Name(), Duration: elapsed})
		p.logger.Debug("step done", "step", step.Name(), "file", st.Filename, "elapsed", elapsed)
	}
	return nil
}
