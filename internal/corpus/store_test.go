package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a temporary corpus for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open corpus: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open corpus: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("got path %q", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create corpus: %v", err)
		}
		if _, err := s.Add(context.Background(), "a.docx", []byte("a"), []string{"alpha"}); err != nil {
			t.Fatalf("failed to add: %v", err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen corpus: %v", err)
		}
		defer s.Close()

		info, err := s.Info(context.Background())
		if err != nil {
			t.Fatalf("failed to get info: %v", err)
		}
		if info.Documents != 1 {
			t.Errorf("got %d documents, expected 1", info.Documents)
		}
	})
}

// TestAdd tests adding documents and document frequencies.
func TestAdd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := setupTestStore(t)
	addedAt := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	s.now = func() time.Time { return addedAt }

	added, err := s.Add(ctx, "one.docx", []byte("content one"), []string{"fox", "dog", "fox"})
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = s.Add(ctx, "two.docx", []byte("content two"), []string{"fox", "cat"})
	if err != nil || !added {
		t.Fatalf("second add: added=%v err=%v", added, err)
	}

	t.Run("same content is ignored", func(t *testing.T) {
		added, err := s.Add(ctx, "copy.docx", []byte("content one"), []string{"fox", "dog"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added {
			t.Error("expected duplicate content to be ignored")
		}
	})

	t.Run("snapshot counts documents per term", func(t *testing.T) {
		table, err := s.Snapshot(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Size() != 2 {
			t.Errorf("got size %d, expected 2", table.Size())
		}
		want := map[string]int{"fox": 2, "dog": 1, "cat": 1, "bird": 0}
		for term, df := range want {
			if got := table.DocumentFrequency(term); got != df {
				t.Errorf("df(%q) = %d, expected %d", term, got, df)
			}
		}
		if table.Terms() != 3 {
			t.Errorf("got %d terms, expected 3", table.Terms())
		}
	})

	t.Run("info", func(t *testing.T) {
		info, err := s.Info(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Documents != 2 || info.Terms != 3 {
			t.Errorf("got %+v", info)
		}
		if !info.LastAdded.Equal(addedAt) {
			t.Errorf("got last added %v, expected %v", info.LastAdded, addedAt)
		}
	})

	t.Run("documents", func(t *testing.T) {
		docs, err := s.Documents(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("got %d documents", len(docs))
		}
		if docs[0].Name != "two.docx" || docs[0].TokenCount != 2 || docs[0].SHA256 != Hash([]byte("content two")) {
			t.Errorf("got %+v", docs[0])
		}
	})
}

// TestReset tests clearing the corpus.
func TestReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := setupTestStore(t)
	if _, err := s.Add(ctx, "a.docx", []byte("a"), []string{"alpha"}); err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}

	info, err := s.Info(ctx)
	if err != nil {
		t.Fatalf("failed to get info: %v", err)
	}
	if info.Documents != 0 || info.Terms != 0 || !info.LastAdded.IsZero() {
		t.Errorf("got %+v", info)
	}

	added, err := s.Add(ctx, "a.docx", []byte("a"), []string{"alpha"})
	if err != nil || !added {
		t.Errorf("expected re-add after reset, added=%v err=%v", added, err)
	}
}

// TestParseTimestamp tests timestamp parsing with the supported formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2024-01-02T03:04:05Z", "2024-01-02 03:04:05", "2024-01-02T03:04:05"} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v", s, got)
		}
	}
	if !parseTimestamp("garbage").IsZero() {
		t.Error("expected zero time for invalid input")
	}
}
