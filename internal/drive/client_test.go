package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/docmetrics/internal/docx/docxtest"
	"github.com/nao1215/docmetrics/internal/fetch"
)

// newTestClient starts a fake Drive API and returns a client for it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(),
		WithHTTPClient(srv.Client()),
		WithEndpoint(srv.URL+"/drive/v3/"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

// TestClientListDOCX tests paging through file listings.
func TestClientListDOCX(t *testing.T) {
	t.Parallel()

	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, map[string]any{
				"nextPageToken": "p2",
				"files": []map[string]any{
					{"id": "1", "name": "a.docx", "size": "100", "modifiedTime": "2024-03-01T10:00:00Z"},
					{"id": "2", "name": "b.docx", "size": "200"},
				},
			})
			return
		}
		writeJSON(t, w, map[string]any{
			"files": []map[string]any{{"id": "3", "name": "c.docx", "size": "300"}},
		})
	})
	c := newTestClient(t, mux)

	files, err := c.ListDOCX(context.Background(), "folder'1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if files[0].ID != "1" || files[0].Size != 100 || files[0].Modified.IsZero() {
		t.Errorf("unexpected first file: %+v", files[0])
	}
	if files[2].Name != "c.docx" {
		t.Errorf("unexpected last file: %+v", files[2])
	}
	if len(queries) != 2 || !strings.Contains(queries[0], `'folder\'1' in parents`) {
		t.Errorf("unexpected queries: %v", queries)
	}
}

// TestClientSearchDOCXLimit tests that results stop at the limit.
func TestClientSearchDOCXLimit(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("q"), "fullText contains 'seo'") {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		writeJSON(t, w, map[string]any{
			"nextPageToken": "more",
			"files": []map[string]any{
				{"id": "1", "name": "a.docx"},
				{"id": "2", "name": "b.docx"},
			},
		})
	})
	c := newTestClient(t, mux)

	files, err := c.SearchDOCX(context.Background(), "seo", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}
}

// TestClientDownload tests downloading file content.
func TestClientDownload(t *testing.T) {
	t.Parallel()

	doc := docxtest.FromText("Drive document")
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/drive/v3/files/")
		if r.URL.Query().Get("alt") == "media" {
			_, _ = w.Write(doc)
			return
		}
		size := len(doc)
		if id == "huge" {
			size = 1 << 30
		}
		writeJSON(t, w, map[string]any{
			"id":       id,
			"name":     id + ".docx",
			"mimeType": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"size":     strconv.Itoa(size),
		})
	})
	c := newTestClient(t, mux)

	t.Run("downloads content", func(t *testing.T) {
		t.Parallel()

		content, err := c.Download(context.Background(), "report", 1<<20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content.Name != "report.docx" {
			t.Errorf("expected name report.docx, got %q", content.Name)
		}
		if content.Size() != int64(len(doc)) {
			t.Errorf("expected %d bytes, got %d", len(doc), content.Size())
		}
	})

	t.Run("rejects files over the limit", func(t *testing.T) {
		t.Parallel()

		_, err := c.Download(context.Background(), "huge", 1<<20)
		if !errors.Is(err, fetch.ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})
}

// TestQueries tests Drive query construction and escaping.
func TestQueries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "all folders",
			got:  ListQuery(""),
			want: "mimeType='application/vnd.openxmlformats-officedocument.wordprocessingml.document' and trashed=false",
		},
		{
			name: "folder",
			got:  ListQuery("abc"),
			want: "mimeType='application/vnd.openxmlformats-officedocument.wordprocessingml.document' and trashed=false and 'abc' in parents",
		},
		{
			name: "search escapes quotes and backslashes",
			got:  SearchQuery(`it's a\b`),
			want: "mimeType='application/vnd.openxmlformats-officedocument.wordprocessingml.document' and trashed=false and fullText contains 'it\\'s a\\\\b'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
