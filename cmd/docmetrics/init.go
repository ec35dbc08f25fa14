package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a docmetrics configuration file",
		Long: `Init creates a new .docmetrics configuration file in the current directory.

The generated file includes:
- The analysis defaults (language, stop words, top words, keywords)
- Web server limits
- Google Drive credential and token locations

Examples:
  # Create .docmetrics in current directory
  docmetrics init

  # Create config file at a specific path
  docmetrics init -o myconfig.yaml

  # Force overwrite existing file
  docmetrics init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := config.WriteTemplate(outputPath, force); err != nil {
		return fmt.Errorf("%w (use -f to overwrite)", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set defaults such as:")
	fmt.Fprintln(out, "  - Stop-word language and custom stop words")
	fmt.Fprintln(out, "  - Target keywords reported for every document")
	fmt.Fprintln(out, "  - Upload limits and rate limits of the web server")
	return nil
}
