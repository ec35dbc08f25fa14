package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/docmetrics/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents analyzed at once.
const DefaultConcurrency = 4

// Input is one document of a batch.
type Input struct {
	// Name identifies the input in the batch results.
	Name string

	// Data is the raw content. It is ignored when Open is set.
	Data []byte

	// Open fetches the content on demand, inside the worker goroutine.
	Open func(ctx context.Context) ([]byte, error)
}

func (in Input) read(ctx context.Context) ([]byte, error) {
	if in.Open != nil {
		return in.Open(ctx)
	}
	return in.Data, nil
}

// BatchProcessor analyzes multiple documents concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each document.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// now stamps the batch.
	now func() time.Time
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithClock sets the clock used for the batch timestamp.
func WithClock(now func() time.Time) BatchOption {
	return func(b *BatchProcessor) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The factory is called once per document.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// process analyzes a single input with its own pipeline and state.
func (bp *BatchProcessor) process(ctx context.Context, in Input) model.Entry {
	data, err := in.read(ctx)
	if err != nil {
		return model.Entry{File: in.Name, Error: err.Error()}
	}

	st := NewState(in.Name, data)
	if err := bp.pipelineFactory().Execute(ctx, st); err != nil {
		return model.Entry{File: in.Name, Error: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return model.Entry{File: in.Name, Error: err.Error()}
	}
	return model.Entry{File: in.Name, Report: st.Report}
}

// ProcessBatch analyzes all inputs and returns the results in input order.
// A failing document is recorded in its entry and does not stop the
// others; the returned error is only set when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []Input) (*model.Batch, error) {
	bp.logger.Info("starting batch processing",
		"total_documents", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	batch := model.NewBatch(bp.now().UTC())
	batch.Results = make([]model.Entry, len(inputs))
	done := make([]bool, len(inputs))

	err := bp.ProcessBatchWithCallback(ctx, inputs, func(entry model.Entry, index int) {
		// Each index is written by exactly one goroutine.
		batch.Results[index] = entry
		done[index] = true
	})

	for i := range batch.Results {
		if done[i] {
			continue
		}
		reason := "not processed"
		if ctxErr := ctx.Err(); ctxErr != nil {
			reason = ctxErr.Error()
		}
		batch.Results[i] = model.Entry{File: inputs[i].Name, Error: reason}
	}

	bp.logger.Info("batch processing complete",
		"total_documents", len(inputs),
		"failed", batch.FailedCount(),
		"elapsed", time.Since(startTime),
	)

	return batch, err
}

// ProcessBatchWithCallback analyzes all inputs and calls callback for each
// finished document. The callback runs on the worker goroutine, so it must
// be safe for concurrent use when it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []Input,
	callback func(entry model.Entry, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analyzing document",
				"file", in.Name,
				"index", i+1,
				"total", len(inputs),
			)

			entry := bp.process(ctx, in)
			if entry.Failed() {
				bp.logger.Warn("analysis failed", "file", in.Name, "error", entry.Error)
			}
			callback(entry, i)
			return nil
		})
	}

	return g.Wait()
}
