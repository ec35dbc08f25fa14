package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/docmetrics/internal/metrics"
	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/textproc"
)

// Options configures a document analysis.
type Options struct {
	// StopWords is the stop-word set. Nil disables stop-word filtering.
	StopWords textproc.StopWords

	// MinTokenLength is the minimum token length in runes. Zero selects
	// textproc.DefaultMinTokenLength; negative values disable the filter.
	MinTokenLength int

	// ReferenceCorpus enables tf-idf importance.
	ReferenceCorpus metrics.ReferenceCorpus

	// Keywords are target keywords whose densities are reported.
	Keywords []string

	// TopN is the number of top words. Zero selects metrics.DefaultTopN.
	TopN int

	// Now supplies the analysis timestamp. Nil uses time.Now.
	Now func() time.Time

	// MaxEntrySize limits decompressed DOCX entries. Zero keeps the
	// loader default.
	MaxEntrySize int64

	// Logger is used by the pipeline and its steps. Nil uses slog.Default.
	Logger *slog.Logger
}

func (o Options) textOptions() textproc.Options {
	minLen := o.MinTokenLength
	if minLen == 0 {
		minLen = textproc.DefaultMinTokenLength
	}
	return textproc.Options{StopWords: o.StopWords, MinTokenLength: minLen}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) loadStep() *LoadStep {
	loadOpts := []LoadStepOption{WithLoadLogger(o.logger())}
	if o.MaxEntrySize > 0 {
		loadOpts = append(loadOpts, WithMaxEntrySize(o.MaxEntrySize))
	}
	return NewLoadStep(loadOpts...)
}

// NewTokenizePipeline builds only the load and tokenize steps. It is used
// to collect the terms of reference corpus documents.
func NewTokenizePipeline(opts Options) *Pipeline {
	p := New(WithLogger(opts.logger()))
	p.AddSteps(
		opts.loadStep(),
		NewTokenizeStep(opts.textOptions()),
	)
	return p
}

// NewAnalysisPipeline builds the load, tokenize, metrics and assemble steps.
func NewAnalysisPipeline(opts Options) *Pipeline {
	p := New(WithLogger(opts.logger()))
	p.AddSteps(
		opts.loadStep(),
		NewTokenizeStep(opts.textOptions()),
		NewMetricsStep(metrics.Options{
			ReferenceCorpus: opts.ReferenceCorpus,
			TopN:            opts.TopN,
			Keywords:        opts.Keywords,
		}),
		NewAssembleStep(opts.Now),
	)
	return p
}

// Analyze runs the complete analysis of one DOCX file.
// A cancelled context yields ctx.Err() and no report.
func Analyze(ctx context.Context, data []byte, filename string, opts Options) (*model.Report, error) {
	st := NewState(filename, data)
	if err := NewAnalysisPipeline(opts).Execute(ctx, st); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return st.Report, nil
}
