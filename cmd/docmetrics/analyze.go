package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files-or-urls...]",
		Short: "Analyze DOCX documents",
		Long: `Analyze reads Word (.docx) documents and reports, for each document:
- Word, sentence, syllable and character counts
- Keyword density and the most frequent words
- Keyword importance (raw frequency, or tf-idf with --corpus)
- Flesch reading ease and grade level
- Density of target keywords given with --keyword

Inputs are local file paths or HTTPS URLs. Documents are analyzed
concurrently; a document that fails is reported and does not stop the
others.

Examples:
  # Analyze a single document
  docmetrics analyze article.docx

  # Analyze several documents and check target keywords
  docmetrics analyze -k "word count" -k seo *.docx

  # Use the German stop-word list
  docmetrics analyze -l german bericht.docx

  # Download and analyze a document
  docmetrics analyze https://example.com/whitepaper.docx

  # Download through a local Tor daemon
  docmetrics analyze --proxy 127.0.0.1:9050 https://example.com/a.docx

  # Analyze every document linked from a download page
  docmetrics analyze --follow-links https://example.com/downloads/

  # Start an embedded Tor daemon for an onion service
  docmetrics analyze --tor http://<address>.onion/report.docx

  # Write an Excel workbook
  docmetrics analyze -f xlsx -o metrics.xlsx *.docx`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	addAnalysisFlags(cmd)
	addOutputFlags(cmd)
	addFetchFlags(cmd)

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Inputs = args

	if err := cfg.ValidateInputs(); err != nil {
		return fmt.Errorf("configuration error: %w (specify one or more DOCX files or URLs)", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cmd, cfg, logger)
}

// runAnalyze analyzes cfg.Inputs and writes the report.
func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", len(cfg.Inputs),
		"language", cfg.Language,
		"batch_size", cfg.BatchSize,
		"use_corpus", cfg.UseCorpus,
	)

	opts, err := analysisOptions(ctx, cfg, newCorpusLoader(cfg.CorpusDir), logger)
	if err != nil {
		return err
	}

	stopTor, err := startTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	inputs := resolveInputs(ctx, cfg, fetcher, logger)

	batch, err := runBatch(ctx, cfg, opts, inputs, logger)
	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	if err := outputBatch(cmd, cfg, batch); err != nil {
		return err
	}
	return batchError(batch)
}
