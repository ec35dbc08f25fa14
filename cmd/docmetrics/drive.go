package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/drive"
	"github.com/nao1215/docmetrics/internal/pipeline"
)

// NewDriveCmd creates the drive command.
func NewDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Analyze DOCX documents stored in Google Drive",
		Long: `Drive lists Word (.docx) documents in Google Drive, downloads them and
analyzes them like the analyze command.

Access requires an OAuth client (type "Desktop app") created in the Google
Cloud console. Save its credentials JSON as credentials.json in the
docmetrics config directory or pass it with --credentials. On first use a
browser authorization is requested; the token is stored with owner-only
permissions and refreshed automatically.

Examples:
  # Analyze the 20 most recently modified documents
  docmetrics drive --limit 20

  # Analyze the documents of one folder
  docmetrics drive --folder 1AbCdEfGhIjKlMnOp

  # Analyze documents whose text contains a phrase
  docmetrics drive --query "quarterly report" -f markdown

  # Only list the documents
  docmetrics drive --list`,
		Args: cobra.NoArgs,
		RunE: runDriveCmd,
	}

	cmd.Flags().String("folder", "", "Only list documents in this folder ID")
	cmd.Flags().StringP("query", "q", "", "Full-text search instead of listing")
	cmd.Flags().Int("limit", config.DefaultDriveLimit, "Maximum number of documents")
	cmd.Flags().String("credentials", "", "OAuth client credentials file (default: credentials.json in the config directory)")
	cmd.Flags().String("token", "", "OAuth token file (default: token.json in the config directory)")
	cmd.Flags().Bool("list", false, "List matching documents without analyzing them")
	cmd.Flags().Bool("no-auth", false, "Fail instead of starting the browser authorization")

	addAnalysisFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runDriveCmd executes the drive command.
func runDriveCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	listOnly, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	noAuth, err := cmd.Flags().GetBool("no-auth")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := drive.NewClient(ctx,
		drive.WithCredentialsFile(cfg.Drive.CredentialsFile),
		drive.WithTokenFile(cfg.Drive.TokenFile),
		drive.WithInteractive(!noAuth),
		drive.WithAuthPrompt(func(authURL string) {
			fmt.Fprintf(cmd.ErrOrStderr(),
				"Open the following URL in your browser to authorize docmetrics:\n\n%s\n\n", authURL)
		}),
		drive.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Drive: %w", err)
	}

	return runDrive(ctx, cmd, cfg, client, listOnly, logger)
}

// runDrive lists the documents selected by cfg.Drive and analyzes them.
func runDrive(ctx context.Context, cmd *cobra.Command, cfg *config.Config, client *drive.Client, listOnly bool, logger *slog.Logger) error {
	var (
		files []drive.File
		err   error
	)
	if cfg.Drive.Query != "" {
		files, err = client.SearchDOCX(ctx, cfg.Drive.Query, cfg.Drive.Limit)
	} else {
		files, err = client.ListDOCX(ctx, cfg.Drive.FolderID, cfg.Drive.Limit)
	}
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No DOCX documents found.")
		return nil
	}
	if listOnly {
		return printDriveFiles(cmd, files)
	}

	opts, err := analysisOptions(ctx, cfg, newCorpusLoader(cfg.CorpusDir), logger)
	if err != nil {
		return err
	}

	inputs := make([]pipeline.Input, len(files))
	for i, f := range files {
		inputs[i] = pipeline.Input{
			Name: f.Name,
			Open: func(ctx context.Context) ([]byte, error) {
				c, err := client.Download(ctx, f.ID, cfg.MaxUploadBytes)
				if err != nil {
					return nil, err
				}
				return c.Data, nil
			},
		}
	}

	batch, err := runBatch(ctx, cfg, opts, inputs, logger)
	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}
	if err := outputBatch(cmd, cfg, batch); err != nil {
		return err
	}
	return batchError(batch)
}

// printDriveFiles prints one line per file.
func printDriveFiles(cmd *cobra.Command, files []drive.File) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tMODIFIED")
	for _, f := range files {
		modified := "-"
		if !f.Modified.IsZero() {
			modified = humanize.Time(f.Modified)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, humanize.IBytes(uint64(max(f.Size, 0))), modified) //nolint:gosec // clamped to zero
	}
	return tw.Flush()
}
