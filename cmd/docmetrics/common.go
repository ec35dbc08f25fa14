package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/corpus"
	"github.com/nao1215/docmetrics/internal/fetch"
	"github.com/nao1215/docmetrics/internal/log"
	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/pipeline"
	"github.com/nao1215/docmetrics/internal/report"
	"github.com/nao1215/docmetrics/internal/stopwords"
	"github.com/nao1215/docmetrics/internal/tor"
)

// errDocumentsFailed is returned after the report is written when at
// least one document could not be analyzed.
var errDocumentsFailed = errors.New("some documents could not be analyzed")

// addAnalysisFlags registers the flags that control tokenization and
// metrics.
func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("language", "l", config.DefaultLanguage,
		"Built-in stop-word list ("+strings.Join(stopwords.Languages(), ", ")+")")
	f.String("stop-words", "",
		"Custom stop-word file, one word per line (replaces the built-in list)")
	f.StringSlice("extra-stop-words", nil,
		"Additional stop words (comma-separated)")
	f.Int("min-length", config.DefaultMinTokenLength,
		"Minimum token length after stop-word filtering (1 keeps all tokens)")
	f.IntP("top", "n", config.DefaultTopN,
		"Number of most frequent words to report")
	f.StringArrayP("keyword", "k", nil,
		"Target keyword or phrase whose density is reported (repeatable)")
	f.Bool("corpus", false,
		"Rank keywords with tf-idf against the reference corpus")
	f.String("corpus-dir", "",
		"Reference corpus directory (default: the docmetrics data directory)")
	f.Int64("max-size", config.DefaultMaxUploadBytes,
		"Maximum document size in bytes")
}

// addOutputFlags registers the batch and report flags.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents analyzed concurrently")
	f.DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each download")
	f.StringP("format", "f", string(report.FormatText),
		"Report format ("+joinFormats()+")")
	f.BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	f.StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// addFetchFlags registers the flags that control URL downloads.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for URL downloads, e.g. 127.0.0.1:9050 for Tor")
	cmd.Flags().Bool("tor", false,
		"Download URLs through an embedded Tor daemon (requires the tor binary)")
	cmd.Flags().Bool("follow-links", false,
		"Treat URLs of HTML pages as lists of DOCX links and analyze the linked documents")
	cmd.Flags().Int("max-links", config.DefaultMaxLinks,
		"Maximum number of documents followed per page (0 follows all)")
}

func joinFormats() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig loads the configuration file and environment, then applies
// the flags the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	var configPath string
	if f := cmd.Flags().Lookup("config"); f != nil {
		configPath = f.Value.String()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyFlags copies changed flags onto cfg. Flags the command does not
// define are skipped.
func applyFlags(f *pflag.FlagSet, cfg *config.Config) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetString(name)
		}
	}
	integer := func(name string, dst *int) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetInt(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetBool(name)
		}
	}
	duration := func(name string, dst *time.Duration) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetDuration(name)
		}
	}

	str("language", &cfg.Language)
	str("stop-words", &cfg.StopWordsFile)
	integer("min-length", &cfg.MinTokenLength)
	integer("top", &cfg.TopN)
	boolean("corpus", &cfg.UseCorpus)
	str("corpus-dir", &cfg.CorpusDir)
	integer("batch", &cfg.BatchSize)
	duration("timeout", &cfg.Timeout)
	str("format", &cfg.Format)
	boolean("json", &cfg.JSONReport)
	boolean("markdown", &cfg.MarkdownReport)
	str("output", &cfg.ReportFile)
	str("proxy", &cfg.Proxy)
	boolean("tor", &cfg.Tor)
	boolean("follow-links", &cfg.FollowLinks)
	integer("max-links", &cfg.MaxLinks)

	str("addr", &cfg.Server.Addr)
	duration("rate-every", &cfg.Server.RateLimitEvery)
	integer("rate-burst", &cfg.Server.RateLimitBurst)
	integer("max-concurrent", &cfg.Server.MaxConcurrent)

	str("folder", &cfg.Drive.FolderID)
	str("query", &cfg.Drive.Query)
	integer("limit", &cfg.Drive.Limit)
	str("credentials", &cfg.Drive.CredentialsFile)
	str("token", &cfg.Drive.TokenFile)
	if err != nil {
		return err
	}

	if f.Changed("max-size") {
		if cfg.MaxUploadBytes, err = f.GetInt64("max-size"); err != nil {
			return err
		}
	}
	if f.Changed("extra-stop-words") {
		words, err := f.GetStringSlice("extra-stop-words")
		if err != nil {
			return err
		}
		cfg.ExtraStopWords = append(cfg.ExtraStopWords, words...)
	}
	if f.Changed("keyword") {
		keywords, err := f.GetStringArray("keyword")
		if err != nil {
			return err
		}
		cfg.Keywords = append(cfg.Keywords, keywords...)
	}
	return nil
}

// setupLogger creates the CLI logger. Secrets are masked even in verbose
// mode.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// newCorpusLoader returns a loader that reads the reference corpus on
// first use. The database must already exist.
func newCorpusLoader(dir string) *corpus.Lazy {
	return corpus.NewLazy(func(ctx context.Context) (*corpus.Table, error) {
		store, err := corpus.Open(dir, corpus.Options{EnableWAL: true})
		if err != nil {
			if errors.Is(err, corpus.ErrNotFound) {
				return nil, fmt.Errorf("%w (add documents with 'docmetrics corpus add')", err)
			}
			return nil, err
		}
		defer store.Close()
		return store.Snapshot(ctx)
	})
}

// analysisOptions builds the pipeline options for cfg. The reference
// corpus is loaded through loader when cfg.UseCorpus is set.
func analysisOptions(ctx context.Context, cfg *config.Config, loader *corpus.Lazy, logger *slog.Logger) (pipeline.Options, error) {
	catalog := stopwords.NewCatalog(stopwords.WithLogger(logger))
	set, err := catalog.Resolve(strings.ToLower(cfg.Language), cfg.StopWordsFile, cfg.ExtraStopWords)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("failed to load stop words: %w", err)
	}

	opts := pipeline.Options{
		StopWords:      set,
		MinTokenLength: cfg.MinTokenLength,
		Keywords:       cfg.Keywords,
		TopN:           cfg.TopN,
		Logger:         logger,
	}

	if cfg.UseCorpus {
		table, err := loader.Get(ctx)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("failed to load reference corpus: %w", err)
		}
		logger.Debug("reference corpus loaded", "documents", table.Size(), "terms", table.Terms())
		opts.ReferenceCorpus = table
	}
	return opts, nil
}

// newFetcher creates the URL fetcher, routed through cfg.Proxy when set.
// Onion services are reachable through a proxy only.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*fetch.Fetcher, error) {
	opts := []fetch.Option{fetch.WithLogger(logger)}
	if cfg.Proxy != "" {
		client, err := fetch.NewProxyClient(cfg.Proxy, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Debug("downloading through proxy", "proxy", cfg.Proxy)
		opts = append(opts, fetch.WithHTTPClient(client), fetch.WithOnionRouting(true))
	}
	return fetch.NewFetcher(opts...), nil
}

// startTor launches the embedded Tor daemon when cfg.Tor is set and
// points cfg.Proxy at it. The returned function stops the daemon.
func startTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	if !cfg.Tor || !hasURL(cfg.Inputs) {
		return func() {}, nil
	}

	daemon := tor.NewDaemon(tor.WithLogger(logger))
	if err := daemon.Start(ctx); err != nil {
		return nil, err
	}
	addr, err := daemon.SocksAddr()
	if err != nil {
		_ = daemon.Stop()
		return nil, err
	}
	cfg.Proxy = addr

	return func() {
		if err := daemon.Stop(); err != nil {
			logger.Warn("failed to stop tor", "error", err)
		}
	}, nil
}

func hasURL(inputs []string) bool {
	for _, in := range inputs {
		if isURL(in) {
			return true
		}
	}
	return false
}

// runBatch analyzes inputs with one pipeline per document.
func runBatch(ctx context.Context, cfg *config.Config, opts pipeline.Options, inputs []pipeline.Input, logger *slog.Logger) (*model.Batch, error) {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewAnalysisPipeline(opts)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	return bp.ProcessBatch(ctx, inputs)
}

// outputBatch writes the batch in the configured format.
//
// Text output to the terminal is the detailed report followed by a
// summary table. Binary formats are never written to the terminal: without
// --output they go to the export directory.
func outputBatch(cmd *cobra.Command, cfg *config.Config, batch *model.Batch) error {
	format, err := cfg.ReportFormat()
	if err != nil {
		return err
	}

	path := cfg.ReportFile
	if path == "" && format.IsBinary() {
		path = filepath.Join(config.ExportDir(), report.ExportFileName(format, batch.GeneratedAt))
	}

	if path == "" {
		out := cmd.OutOrStdout()
		w, err := report.NewWriter(format, out)
		if err != nil {
			return err
		}
		if _, err := w.WriteBatch(batch); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if format == report.FormatText {
			if _, err := report.WriteSummary(out, batch); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
		return nil
	}

	if err := writeReportFile(path, format, batch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	return nil
}

// writeReportFile creates path with owner-only permissions and writes the
// batch report to it.
func writeReportFile(path string, format report.Format, batch *model.Batch) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-selected output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := report.NewWriter(format, f)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := w.WriteBatch(batch); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// batchError reports failed documents after output has been written.
func batchError(batch *model.Batch) error {
	if n := batch.FailedCount(); n > 0 {
		return fmt.Errorf("%w: %d of %d failed", errDocumentsFailed, n, len(batch.Results))
	}
	return nil
}
