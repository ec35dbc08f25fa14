package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/docmetrics/internal/docx"
	"github.com/nao1215/docmetrics/internal/metrics"
	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/textproc"
)

// errStepOrder is returned when a step runs before the step it depends on.
var errStepOrder = errors.New("pipeline step out of order")

// LoadStep parses the raw input into a document.
type LoadStep struct {
	maxEntrySize int64
	logger       *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithMaxEntrySize limits the decompressed size of each DOCX zip entry.
func WithMaxEntrySize(n int64) LoadStepOption {
	return func(s *LoadStep) {
		s.maxEntrySize = n
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		maxEntrySize: docx.DefaultMaxEntrySize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, st *State) error {
	doc, err := docx.Load(st.Data, st.Filename,
		docx.WithMaxEntrySize(s.maxEntrySize),
		docx.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	st.Document = doc
	return nil
}

// TokenizeStep turns the document text into tokens.
type TokenizeStep struct {
	opts textproc.Options
}

// NewTokenizeStep creates a new tokenize step.
func NewTokenizeStep(opts textproc.Options) *TokenizeStep {
	return &TokenizeStep{opts: opts}
}

// Name returns the step name.
func (s *TokenizeStep) Name() string {
	return "tokenize"
}

// Do executes the tokenize step.
func (s *TokenizeStep) Do(_ context.Context, st *State) error {
	if st.Document == nil {
		return errStepOrder
	}
	st.Tokens = textproc.Tokenize(st.Document.Text(), s.opts)
	return nil
}

// MetricsStep computes the metrics of the tokenized document.
type MetricsStep struct {
	opts metrics.Options
}

// NewMetricsStep creates a new metrics step.
func NewMetricsStep(opts metrics.Options) *MetricsStep {
	return &MetricsStep{opts: opts}
}

// Name returns the step name.
func (s *MetricsStep) Name() string {
	return "metrics"
}

// Do executes the metrics step.
func (s *MetricsStep) Do(_ context.Context, st *State) error {
	if st.Document == nil {
		return errStepOrder
	}
	st.Metrics = metrics.Compute(st.Document, st.Tokens, s.opts)
	return nil
}

// AssembleStep builds the final report.
type AssembleStep struct {
	now func() time.Time
}

// NewAssembleStep creates a new assemble step. The clock supplies the
// analysis timestamp; nil uses time.Now.
func NewAssembleStep(now func() time.Time) *AssembleStep {
	if now == nil {
		now = time.Now
	}
	return &AssembleStep{now: now}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assemble step.
func (s *AssembleStep) Do(_ context.Context, st *State) error {
	r, err := model.Assemble(st.Document, st.Metrics, s.now().UTC())
	if err != nil {
		return err
	}
	if r.WordCount != len(st.Tokens.Raw) {
		return fmt.Errorf("%w: word count %d differs from %d tokens",
			model.ErrIncompleteAnalysis, r.WordCount, len(st.Tokens.Raw))
	}
	st.Report = r
	return nil
}
