package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/docmetrics/internal/docx/docxtest"
)

// TestValidate tests URL scheme and host checks.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      bool
	}{
		{"public https", "https://example.com/a.docx", false, false},
		{"plain http", "http://example.com/a.docx", false, true},
		{"ftp", "ftp://example.com/a.docx", false, true},
		{"missing host", "https:///a.docx", false, true},
		{"localhost", "https://localhost/a.docx", false, true},
		{"loopback ip", "https://127.0.0.1/a.docx", false, true},
		{"private ip", "https://10.0.0.5/a.docx", false, true},
		{"carrier nat", "https://100.64.1.1/a.docx", false, true},
		{"ipv6 loopback", "https://[::1]/a.docx", false, true},
		{"private allowed", "https://192.168.1.10/a.docx", true, false},
		{"http private allowed", "http://localhost:8080/a.docx", true, false},
		{"http public still refused", "http://example.com/a.docx", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFetcher(WithAllowPrivate(tt.allowPrivate))
			_, err := f.validate(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrURLNotAllowed) {
					t.Errorf("expected ErrURLNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// testOnionHost is the v3 onion address of the all-0x42 public key.
const testOnionHost = "ijbeeqscijbeeqscijbeeqscijbeeqscijbeeqscijbeeqscijbezhid.onion"

// TestValidateOnion tests onion hosts with and without Tor routing.
func TestValidateOnion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		onion   bool
		wantErr bool
	}{
		{"refused without routing", "https://" + testOnionHost + "/a.docx", false, true},
		{"https with routing", "https://" + testOnionHost + "/a.docx", true, false},
		{"http with routing", "http://" + testOnionHost + "/a.docx", true, false},
		{"subdomain", "http://docs." + testOnionHost + "/a.docx", true, false},
		{"invalid address", "http://notanonionservice.onion/a.docx", true, true},
		{"public http still refused", "http://example.com/a.docx", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFetcher(WithAllowPrivate(false), WithOnionRouting(tt.onion))
			_, err := f.validate(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrURLNotAllowed) {
					t.Errorf("expected ErrURLNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestFetcherURL tests downloading from an HTTPS server.
func TestFetcherURL(t *testing.T) {
	t.Parallel()

	doc := docxtest.FromText("Hello world")
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report.docx":
			_, _ = w.Write(doc)
		case "/big.docx":
			_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(WithHTTPClient(srv.Client()), WithAllowPrivate(true))

	t.Run("downloads document", func(t *testing.T) {
		t.Parallel()

		c, err := f.URL(context.Background(), srv.URL+"/report.docx", 1<<20, time.Second*5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Name != "report.docx" {
			t.Errorf("expected name report.docx, got %q", c.Name)
		}
		if c.Size() != int64(len(doc)) {
			t.Errorf("expected %d bytes, got %d", len(doc), c.Size())
		}
		if c.MIMEType == "" || c.MIMEType == "application/octet-stream" {
			t.Errorf("expected a sniffed media type, got %q", c.MIMEType)
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		t.Parallel()

		_, err := f.URL(context.Background(), srv.URL+"/big.docx", 1024, 0)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("reports HTTP errors", func(t *testing.T) {
		t.Parallel()

		_, err := f.URL(context.Background(), srv.URL+"/missing.docx", 1024, 0)
		if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
			t.Errorf("expected HTTP 404 error, got %v", err)
		}
	})

	t.Run("refuses private host by default", func(t *testing.T) {
		t.Parallel()

		strict := NewFetcher(WithHTTPClient(srv.Client()), WithAllowPrivate(false))
		_, err := strict.URL(context.Background(), srv.URL+"/report.docx", 1024, 0)
		if !errors.Is(err, ErrURLNotAllowed) {
			t.Errorf("expected ErrURLNotAllowed, got %v", err)
		}
	})
}

// roundTripFunc serves requests from a function.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

// redirectTo answers with a 302 pointing at location.
func redirectTo(req *http.Request, location string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusFound,
		Header:     http.Header{"Location": []string{location}},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}

// TestFetcherRedirects tests that redirect targets are checked like the
// requested URL.
func TestFetcherRedirects(t *testing.T) {
	t.Parallel()

	var internalHits atomic.Int32
	internal := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		internalHits.Add(1)
		_, _ = w.Write([]byte("internal secret"))
	}))
	t.Cleanup(internal.Close)

	doc := docxtest.FromText("Hello world")
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Host {
		case "public.example.com":
			return redirectTo(req, internal.URL+"/secret.docx"), nil
		case "moved.example.com":
			return redirectTo(req, "https://cdn.example.com/report.docx"), nil
		case "loop.example.com":
			return redirectTo(req, "https://loop.example.com"+req.URL.Path+"x"), nil
		case "cdn.example.com":
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader(string(doc))),
				Request:    req,
			}, nil
		}
		return internal.Client().Transport.RoundTrip(req)
	})
	client := &http.Client{Transport: transport}

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"redirect to loopback", "https://public.example.com/a.docx", true},
		{"redirect to public host", "https://moved.example.com/a.docx", false},
		{"redirect loop", "https://loop.example.com/a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFetcher(WithHTTPClient(client), WithAllowPrivate(false))
			c, err := f.URL(t.Context(), tt.url, 1<<20, 5*time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrURLNotAllowed) {
					t.Errorf("expected ErrURLNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Size() != int64(len(doc)) {
				t.Errorf("expected %d bytes, got %d", len(doc), c.Size())
			}
		})
	}

	t.Run("loopback server never reached", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(WithHTTPClient(client), WithAllowPrivate(false))
		if _, err := f.URL(t.Context(), "https://public.example.com/b.docx", 1<<20, 5*time.Second); err == nil {
			t.Fatal("expected error")
		}
		if n := internalHits.Load(); n != 0 {
			t.Errorf("internal server was hit %d times", n)
		}
	})

	t.Run("given client is not modified", func(t *testing.T) {
		t.Parallel()

		if client.CheckRedirect != nil {
			t.Error("expected the caller's client to keep its redirect policy")
		}
	})
}

// TestCheckDial tests the connect-time address check of the default client.
func TestCheckDial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		address      string
		allowPrivate bool
		wantErr      bool
	}{
		{"loopback", "127.0.0.1:443", false, true},
		{"private", "10.1.2.3:443", false, true},
		{"ipv6 loopback", "[::1]:443", false, true},
		{"public", "93.184.216.34:443", false, false},
		{"private allowed", "192.168.0.10:443", true, false},
		{"malformed", "no-port", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFetcher(WithAllowPrivate(tt.allowPrivate))
			err := f.checkDial("tcp", tt.address, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrURLNotAllowed) {
					t.Errorf("expected ErrURLNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestDefaultClientRefusesPrivateAddress tests that the default client does
// not connect to loopback even when the URL passes validation.
func TestDefaultClientRefusesPrivateAddress(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("internal secret"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(WithAllowPrivate(false))
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := f.client.Do(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected the connection to be refused")
	}
	if !errors.Is(err, ErrURLNotAllowed) {
		t.Errorf("expected ErrURLNotAllowed, got %v", err)
	}
}

// TestFile tests reading local files.
func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "notes.docx")
	doc := docxtest.FromText("Local file")
	if err := os.WriteFile(p, doc, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		c, err := File(p, 1<<20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Name != "notes.docx" || c.Size() != int64(len(doc)) {
			t.Errorf("unexpected content %q (%d bytes)", c.Name, c.Size())
		}
	})

	t.Run("enforces limit", func(t *testing.T) {
		t.Parallel()

		if _, err := File(p, 10); !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := File(filepath.Join(dir, "nope.docx"), 0); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		if _, err := File(dir, 0); err == nil {
			t.Error("expected error for directory")
		}
	})
}

// TestContentIsHTML tests HTML detection of fetched content.
func TestContentIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		header string
		want   bool
	}{
		{"html page", []byte("<!DOCTYPE html><html><body><a href=\"a.docx\">a</a></body></html>"), "", true},
		{"html header only", nil, "text/html; charset=utf-8", true},
		{"document", docxtest.FromText("Not a page"), "text/html", false},
		{"plain text", []byte("just words"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewContent("x", tt.data, tt.header).IsHTML(); got != tt.want {
				t.Errorf("IsHTML() = %v, want %v", got, tt.want)
			}
		})
	}
}
