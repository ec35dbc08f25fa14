package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/docx/docxtest"
	"github.com/nao1215/docmetrics/internal/drive"
)

// fakeDrive serves a Drive API with the given documents. A nil document
// is returned as unreadable content.
func fakeDrive(t *testing.T, docs map[string][]byte) *drive.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Error("expected a query")
		}
		files := make([]map[string]any, 0, len(docs))
		for _, id := range []string{"a", "b", "c"} {
			if _, ok := docs[id]; ok {
				files = append(files, map[string]any{
					"id": id, "name": id + ".docx", "size": "2048", "modifiedTime": "2024-03-01T10:00:00Z",
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"files": files})
	})
	mux.HandleFunc("/drive/v3/files/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/drive/v3/files/")
		doc, ok := docs[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("alt") == "media" {
			if doc == nil {
				doc = []byte("not a document")
			}
			_, _ = w.Write(doc)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "name": id + ".docx", "size": "2048"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := drive.NewClient(t.Context(),
		drive.WithHTTPClient(srv.Client()),
		drive.WithEndpoint(srv.URL+"/drive/v3/"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// TestRunDrive tests listing and analyzing Drive documents.
func TestRunDrive(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	run := func(t *testing.T, docs map[string][]byte, listOnly bool, modify func(*config.Config)) (string, string, error) {
		t.Helper()
		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.CorpusDir = t.TempDir()
		if modify != nil {
			modify(cfg)
		}

		var out, errOut bytes.Buffer
		cmd := NewDriveCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		err := runDrive(t.Context(), cmd, cfg, fakeDrive(t, docs), listOnly, logger)
		return out.String(), errOut.String(), err
	}

	t.Run("analyzes listed documents", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, map[string][]byte{
			"a": docxtest.FromText("First drive document."),
			"b": docxtest.FromText("Second drive document here."),
		}, false, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		batch := decodeBatch(t, stdout)
		if len(batch.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(batch.Results))
		}
		if batch.Results[0].File != "a.docx" || batch.Results[1].Report.WordCount != 4 {
			t.Errorf("unexpected results: %+v", batch.Results)
		}
	})

	t.Run("search uses the query", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, map[string][]byte{
			"c": docxtest.FromText("Searched document."),
		}, false, func(cfg *config.Config) { cfg.Drive.Query = "searched" })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch := decodeBatch(t, stdout); len(batch.Results) != 1 {
			t.Errorf("expected 1 result, got %d", len(batch.Results))
		}
	})

	t.Run("lists without analyzing", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, map[string][]byte{"a": nil}, true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"ID", "NAME", "a.docx", "2.0 KiB"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in listing:\n%s", want, stdout)
			}
		}
	})

	t.Run("no documents", func(t *testing.T) {
		t.Parallel()
		stdout, stderr, err := run(t, map[string][]byte{}, false, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" || !strings.Contains(stderr, "No DOCX documents found") {
			t.Errorf("unexpected output: %q / %q", stdout, stderr)
		}
	})

	t.Run("unreadable document fails the batch", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, map[string][]byte{
			"a": docxtest.FromText("Readable."),
			"b": nil,
		}, false, nil)
		if !errors.Is(err, errDocumentsFailed) {
			t.Fatalf("expected errDocumentsFailed, got %v", err)
		}
		batch := decodeBatch(t, stdout)
		if len(batch.Results) != 2 || !batch.Results[1].Failed() {
			t.Errorf("unexpected results: %+v", batch.Results)
		}
	})
}

// TestNewDriveCmd tests the drive command flags.
func TestNewDriveCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDriveCmd()
	for _, name := range []string{"folder", "query", "limit", "credentials", "token", "list", "no-auth", "format", "keyword"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if def := cmd.Flags().Lookup("limit").DefValue; def != "100" {
		t.Errorf("expected limit default 100, got %s", def)
	}
}
