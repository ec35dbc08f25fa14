package main

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/fetch"
	"github.com/nao1215/docmetrics/internal/model"
)

// TestApplyFlags tests that only changed flags override the configuration.
func TestApplyFlags(t *testing.T) {
	t.Parallel()

	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		addAnalysisFlags(cmd)
		addOutputFlags(cmd)
		return cmd
	}

	t.Run("unchanged flags keep configuration", func(t *testing.T) {
		t.Parallel()
		cmd := newCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		cfg := config.NewConfig()
		cfg.TopN = 25
		cfg.Keywords = []string{"from file"}

		if err := applyFlags(cmd.Flags(), cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TopN != 25 || len(cfg.Keywords) != 1 {
			t.Errorf("configuration changed: top %d, keywords %v", cfg.TopN, cfg.Keywords)
		}
	})

	t.Run("changed flags override and append", func(t *testing.T) {
		t.Parallel()
		cmd := newCmd()
		err := cmd.ParseFlags([]string{
			"-l", "German", "-n", "5", "--min-length", "3",
			"-k", "a, b", "-k", "c", "--extra-stop-words", "x,y",
			"--corpus", "--corpus-dir", "/tmp/c", "--max-size", "1024",
			"-b", "2", "-t", "5s", "-f", "pdf", "-o", "out.pdf",
		})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.NewConfig()
		cfg.Keywords = []string{"from file"}

		if err := applyFlags(cmd.Flags(), cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Language != "German" || cfg.TopN != 5 || cfg.MinTokenLength != 3 {
			t.Errorf("unexpected analysis settings: %+v", cfg)
		}
		if !slices.Equal(cfg.Keywords, []string{"from file", "a, b", "c"}) {
			t.Errorf("unexpected keywords %v", cfg.Keywords)
		}
		if !slices.Equal(cfg.ExtraStopWords, []string{"x", "y"}) {
			t.Errorf("unexpected extra stop words %v", cfg.ExtraStopWords)
		}
		if !cfg.UseCorpus || cfg.CorpusDir != "/tmp/c" || cfg.MaxUploadBytes != 1024 {
			t.Errorf("unexpected corpus settings: %+v", cfg)
		}
		if cfg.BatchSize != 2 || cfg.Timeout != 5*time.Second || cfg.Format != "pdf" || cfg.ReportFile != "out.pdf" {
			t.Errorf("unexpected output settings: %+v", cfg)
		}
	})
}

// TestBatchError tests the exit error after output.
func TestBatchError(t *testing.T) {
	t.Parallel()

	batch := model.NewBatch(time.Now())
	batch.AddReport("a.docx", &model.Report{Filename: "a.docx"})
	if err := batchError(batch); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	batch.AddError("b.docx", errDocumentsFailed)
	if err := batchError(batch); err == nil || err.Error() != "some documents could not be analyzed: 1 of 2 failed" {
		t.Errorf("unexpected error %v", err)
	}
}

// TestNewFetcher tests proxy selection for URL downloads.
func TestNewFetcher(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.NewConfig()
	if _, err := newFetcher(cfg, logger); err != nil {
		t.Errorf("unexpected error without proxy: %v", err)
	}

	cfg.Proxy = "127.0.0.1:9050"
	if _, err := newFetcher(cfg, logger); err != nil {
		t.Errorf("unexpected error with proxy: %v", err)
	}

	cfg.Proxy = "tor"
	if _, err := newFetcher(cfg, logger); !errors.Is(err, fetch.ErrInvalidProxyAddress) {
		t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
	}
}

// TestStartTorSkipped tests that Tor is only started for URL inputs.
func TestStartTorSkipped(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name   string
		tor    bool
		inputs []string
	}{
		{"disabled", false, []string{"https://example.com/a.docx"}},
		{"local files only", true, []string{"a.docx", "b.docx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.Tor = tt.tor
			cfg.Inputs = tt.inputs

			stop, err := startTor(t.Context(), cfg, logger)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			stop()
			if cfg.Proxy != "" {
				t.Errorf("expected no proxy, got %q", cfg.Proxy)
			}
		})
	}
}
