package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/corpus"
	"github.com/nao1215/docmetrics/internal/pipeline"
	"github.com/nao1215/docmetrics/internal/stopwords"
)

// NewCorpusCmd creates the corpus command and its subcommands.
func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the reference corpus used for tf-idf",
		Long: `Corpus manages the reference corpus that "analyze --corpus" uses to weight
keywords by inverse document frequency.

The corpus stores, for every term, the number of documents that contain it.
Documents are identified by content hash, so adding the same document twice
has no effect. Terms are collected with the same stop words and minimum
token length as the analysis.

Examples:
  # Add documents to the corpus
  docmetrics corpus add articles/*.docx

  # Show corpus statistics and recently added documents
  docmetrics corpus info

  # Remove all documents
  docmetrics corpus reset --yes`,
	}

	cmd.PersistentFlags().String("corpus-dir", "",
		"Reference corpus directory (default: the docmetrics data directory)")

	cmd.AddCommand(newCorpusAddCmd())
	cmd.AddCommand(newCorpusInfoCmd())
	cmd.AddCommand(newCorpusResetCmd())
	return cmd
}

func newCorpusAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [files-or-urls...]",
		Short: "Add documents to the reference corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCorpusAddCmd,
	}
	f := cmd.Flags()
	f.StringP("language", "l", config.DefaultLanguage,
		"Built-in stop-word list ("+strings.Join(stopwords.Languages(), ", ")+")")
	f.String("stop-words", "", "Custom stop-word file, one word per line")
	f.StringSlice("extra-stop-words", nil, "Additional stop words (comma-separated)")
	f.Int("min-length", config.DefaultMinTokenLength, "Minimum token length")
	f.Int64("max-size", config.DefaultMaxUploadBytes, "Maximum document size in bytes")
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each download")
	addFetchFlags(cmd)
	return cmd
}

func newCorpusInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show reference corpus statistics",
		Args:  cobra.NoArgs,
		RunE:  runCorpusInfoCmd,
	}
	cmd.Flags().Int("limit", 10, "Number of recently added documents to list (0 lists none)")
	return cmd
}

func newCorpusResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all documents from the reference corpus",
		Args:  cobra.NoArgs,
		RunE:  runCorpusResetCmd,
	}
	cmd.Flags().Bool("yes", false, "Confirm removal")
	return cmd
}

// runCorpusAddCmd executes the corpus add command.
func runCorpusAddCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Inputs = args
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := cmd.Context()

	catalog := stopwords.NewCatalog(stopwords.WithLogger(logger))
	set, err := catalog.Resolve(strings.ToLower(cfg.Language), cfg.StopWordsFile, cfg.ExtraStopWords)
	if err != nil {
		return fmt.Errorf("failed to load stop words: %w", err)
	}
	opts := pipeline.Options{
		StopWords:      set,
		MinTokenLength: cfg.MinTokenLength,
		Logger:         logger,
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

	store, err := corpus.Open(cfg.CorpusDir, corpus.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer store.Close()

	inputs := resolveInputs(ctx, cfg, fetcher, logger)
	added, failed := addToCorpus(ctx, cmd, store, inputs, opts, logger)

	fmt.Fprintf(cmd.OutOrStdout(), "%d added, %d already present, %d failed\n",
		added, len(inputs)-added-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errDocumentsFailed, failed, len(inputs))
	}
	return nil
}

// addToCorpus tokenizes and stores each input, one at a time. SQLite
// allows a single writer, so there is nothing to gain from concurrency.
func addToCorpus(ctx context.Context, cmd *cobra.Command, store *corpus.Store, inputs []pipeline.Input, opts pipeline.Options, logger *slog.Logger) (added, failed int) {
	for _, in := range inputs {
		ok, err := addDocument(ctx, store, in, opts)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", in.Name, err)
		case ok:
			added++
			logger.Debug("document added to corpus", "file", in.Name)
		default:
			logger.Debug("document already in corpus", "file", in.Name)
		}
	}
	return added, failed
}

// addDocument reads, tokenizes and stores one document.
func addDocument(ctx context.Context, store *corpus.Store, in pipeline.Input, opts pipeline.Options) (bool, error) {
	data, err := in.Open(ctx)
	if err != nil {
		return false, err
	}
	st := pipeline.NewState(in.Name, data)
	if err := pipeline.NewTokenizePipeline(opts).Execute(ctx, st); err != nil {
		return false, err
	}
	return store.Add(ctx, in.Name, data, st.Tokens.Filtered)
}

// runCorpusInfoCmd executes the corpus info command.
func runCorpusInfoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	store, err := corpus.Open(cfg.CorpusDir, corpus.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	info, err := store.Info(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database:  %s\n", info.Path)
	fmt.Fprintf(out, "Documents: %s\n", humanize.Comma(int64(info.Documents)))
	fmt.Fprintf(out, "Terms:     %s\n", humanize.Comma(int64(info.Terms)))
	if !info.LastAdded.IsZero() {
		fmt.Fprintf(out, "Updated:   %s (%s)\n",
			info.LastAdded.Local().Format(time.DateTime), humanize.Time(info.LastAdded))
	}

	if limit <= 0 || info.Documents == 0 {
		return nil
	}
	docs, err := store.Documents(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTOKENS\tADDED\tSHA256")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", d.Name, d.TokenCount, d.AddedAt.Local().Format(time.DateTime), d.SHA256[:12])
	}
	return tw.Flush()
}

// runCorpusResetCmd executes the corpus reset command.
func runCorpusResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !yes {
		return fmt.Errorf("refusing to reset the corpus at %s without --yes", cfg.CorpusDir)
	}

	store, err := corpus.Open(cfg.CorpusDir, corpus.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer store.Close()

	if err := store.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Reference corpus reset.")
	return nil
}
