package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docmetrics.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docmetrics",
		Short: "Word count and SEO metrics for DOCX documents",
		Long: `docmetrics analyzes Word (.docx) documents and reports word counts,
keyword density, keyword importance and readability.

Documents can be read from local files, HTTPS URLs or Google Drive, and the
results written as text, JSON, Markdown, PDF or Excel reports. The serve
command provides the same analysis as a web UI and HTTP API.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .docmetrics in current or home directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewDriveCmd())
	cmd.AddCommand(NewCorpusCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
