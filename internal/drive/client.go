package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/nao1215/docmetrics/internal/docx"
	"github.com/nao1215/docmetrics/internal/fetch"
)

// DefaultLimit is the number of files returned by ListDOCX and SearchDOCX
// when no limit is given.
const DefaultLimit = 100

const fileFields = "id, name, mimeType, size, createdTime, modifiedTime"

// File describes a Drive file.
type File struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created,omitzero"`
	Modified time.Time `json:"modified,omitzero"`
}

// Client accesses Google Drive.
type Client struct {
	svc    *drivev3.Service
	logger *slog.Logger
}

type options struct {
	credentialsPath string
	tokenPath       string
	httpClient      *http.Client
	endpoint        string
	interactive     bool
	prompt          func(string)
	logger          *slog.Logger
}

// Option configures NewClient.
type Option func(*options)

// WithCredentialsFile sets the OAuth client credentials file.
func WithCredentialsFile(path string) Option {
	return func(o *options) {
		o.credentialsPath = path
	}
}

// WithTokenFile sets where the OAuth token is stored.
func WithTokenFile(path string) Option {
	return func(o *options) {
		o.tokenPath = path
	}
}

// WithHTTPClient uses c for API calls and skips OAuth entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithEndpoint overrides the Drive API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithInteractive enables or disables the browser authorization flow
// when no token is stored. It is enabled by default.
func WithInteractive(interactive bool) Option {
	return func(o *options) {
		o.interactive = interactive
	}
}

// WithAuthPrompt sets the function that shows the consent URL.
func WithAuthPrompt(prompt func(authURL string)) Option {
	return func(o *options) {
		o.prompt = prompt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewClient creates a Drive client.
//
// Without WithHTTPClient it loads the credentials file, reuses the stored
// token and runs Authorize when no token exists.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	o := &options{
		interactive: true,
		logger:      slog.Default(),
		prompt: func(authURL string) {
			fmt.Fprintf(os.Stderr, "Open the following URL in your browser to authorize docmetrics:\n\n%s\n\n", authURL)
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		c, err := oauthClient(ctx, o)
		if err != nil {
			return nil, err
		}
		httpClient = c
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(o.endpoint))
	}
	svc, err := drivev3.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{svc: svc, logger: o.logger}, nil
}

// oauthClient builds an HTTP client that refreshes and persists tokens.
func oauthClient(ctx context.Context, o *options) (*http.Client, error) {
	cfg, err := LoadConfig(o.credentialsPath)
	if err != nil {
		return nil, err
	}
	if o.tokenPath == "" {
		return nil, fmt.Errorf("%w: no token path", ErrNoToken)
	}

	tok, err := LoadToken(o.tokenPath)
	if errors.Is(err, ErrNoToken) {
		if !o.interactive {
			return nil, err
		}
		o.logger.Info("no stored token, starting authorization")
		tok, err = Authorize(ctx, cfg, o.prompt)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(o.tokenPath, tok); err != nil {
			return nil, err
		}
		o.logger.Info("saved token", "path", o.tokenPath)
	}
	if err != nil {
		return nil, err
	}

	ts := newSavingTokenSource(cfg.TokenSource(ctx, tok), o.tokenPath, tok, o.logger)
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// ListDOCX lists DOCX files, optionally restricted to a folder.
func (c *Client) ListDOCX(ctx context.Context, folderID string, limit int) ([]File, error) {
	return c.list(ctx, ListQuery(folderID), limit)
}

// SearchDOCX lists DOCX files whose content matches text.
func (c *Client) SearchDOCX(ctx context.Context, text string, limit int) ([]File, error) {
	return c.list(ctx, SearchQuery(text), limit)
}

func (c *Client) list(ctx context.Context, q string, limit int) ([]File, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	c.logger.Debug("listing drive files", "query", q, "limit", limit)

	files := make([]File, 0)
	pageToken := ""
	for len(files) < limit {
		call := c.svc.Files.List().
			Q(q).
			PageSize(int64(min(limit-len(files), 1000))).
			Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")")).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive files: %w", err)
		}
		for _, f := range res.Files {
			files = append(files, toFile(f))
		}
		if res.NextPageToken == "" || len(res.Files) == 0 {
			break
		}
		pageToken = res.NextPageToken
	}
	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// Download fetches the content of a file, reading at most maxBytes.
func (c *Client) Download(ctx context.Context, id string, maxBytes int64) (*fetch.Content, error) {
	meta, err := c.svc.Files.Get(id).Fields(googleapi.Field(fileFields)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get drive file %s: %w", id, err)
	}
	if maxBytes > 0 && meta.Size > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", fetch.ErrTooLarge, meta.Name, meta.Size, maxBytes)
	}

	resp, err := c.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := fetch.ReadAll(resp.Body, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", id, err)
	}

	name := meta.Name
	if name == "" {
		name = "document_" + id + ".docx"
	}
	return fetch.NewContent(name, data, meta.MimeType), nil
}

// ListQuery returns the Drive query for DOCX files in a folder.
// An empty folderID matches all folders.
func ListQuery(folderID string) string {
	q := "mimeType='" + docx.MIMEType + "' and trashed=false"
	if folderID != "" {
		q += " and '" + escapeQuery(folderID) + "' in parents"
	}
	return q
}

// SearchQuery returns the Drive query for DOCX files containing text.
func SearchQuery(text string) string {
	return ListQuery("") + " and fullText contains '" + escapeQuery(text) + "'"
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

func toFile(f *drivev3.File) File {
	out := File{ID: f.Id, Name: f.Name, Size: f.Size}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		out.Created = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		out.Modified = t
	}
	return out
}
