package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nao1215/docmetrics/internal/tor"
)

const (
	// AllowPrivateEnv enables fetching from loopback and private hosts.
	AllowPrivateEnv = "DOCMETRICS_ALLOW_PRIVATE_URLS"

	// DefaultTimeout is the timeout for remote fetches.
	DefaultTimeout = 30 * time.Second

	// MaxRedirects is the number of redirects followed per download.
	MaxRedirects = 10

	userAgent   = "docmetrics/1.0"
	defaultName = "document.docx"
)

// Content is a fetched document.
type Content struct {
	// Name is the base file name of the document.
	Name string

	// Data holds the raw bytes.
	Data []byte

	// MIMEType is the sniffed media type.
	MIMEType string
}

// Size returns the number of bytes fetched.
func (c *Content) Size() int64 {
	return int64(len(c.Data))
}

// IsHTML reports whether the content is an HTML page.
func (c *Content) IsHTML() bool {
	return strings.HasPrefix(c.MIMEType, "text/html")
}

// NewContent wraps downloaded bytes. The media type is sniffed from data
// and falls back to contentType.
func NewContent(name string, data []byte, contentType string) *Content {
	return &Content{Name: name, Data: data, MIMEType: sniff(data, contentType)}
}

// Fetcher downloads documents over HTTPS.
type Fetcher struct {
	client       *http.Client
	allowPrivate bool
	onion        bool
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithAllowPrivate allows loopback and private network hosts.
func WithAllowPrivate(allow bool) Option {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// WithOnionRouting allows onion service hosts. Their traffic is encrypted
// end to end by Tor, so plain http is accepted for them. Only enable it
// when the HTTP client goes through a Tor proxy.
func WithOnionRouting(enable bool) Option {
	return func(f *Fetcher) {
		f.onion = enable
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher. Private hosts are allowed when
// AllowPrivateEnv is set to a true value.
//
// Every redirect target passes the same checks as the requested URL. The
// default client also refuses to connect to private addresses, so public
// names resolving to them are rejected too. A client given with
// WithHTTPClient keeps its own dialer.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		allowPrivate: allowPrivateFromEnv(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = f.directClient()
	}
	f.client = f.checkRedirects(f.client)
	return f
}

// directClient returns a client that dials hosts itself and checks the
// resolved address of every connection.
func (f *Fetcher) directClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   f.checkDial,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// checkDial refuses connections to private addresses.
func (f *Fetcher) checkDial(_, address string, _ syscall.RawConn) error {
	if f.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrURLNotAllowed, err)
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateOrLocalIP(ip) {
		return fmt.Errorf("%w: address %s is private", ErrURLNotAllowed, host)
	}
	return nil
}

// checkRedirects returns a copy of c that validates each redirect target
// and stops after MaxRedirects hops.
func (f *Fetcher) checkRedirects(c *http.Client) *http.Client {
	guarded := *c
	guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= MaxRedirects {
			return fmt.Errorf("%w: stopped after %d redirects", ErrURLNotAllowed, MaxRedirects)
		}
		if _, err := f.validate(req.URL.String()); err != nil {
			return fmt.Errorf("redirect refused: %w", err)
		}
		return nil
	}
	return &guarded
}

// URL downloads rawURL with the default Fetcher.
func URL(ctx context.Context, rawURL string, maxBytes int64, timeout time.Duration) (*Content, error) {
	return NewFetcher().URL(ctx, rawURL, maxBytes, timeout)
}

// URL downloads rawURL, reading at most maxBytes.
// A timeout of zero uses DefaultTimeout.
func (f *Fetcher) URL(ctx context.Context, rawURL string, maxBytes int64, timeout time.Duration) (*Content, error) {
	u, err := f.validate(rawURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	f.logger.Debug("fetching document", "url", u.Redacted())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: HTTP %d", u.Redacted(), resp.StatusCode)
	}
	if resp.ContentLength > maxBytes && maxBytes > 0 {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, resp.ContentLength, maxBytes)
	}

	data, err := ReadAll(resp.Body, maxBytes)
	if err != nil {
		return nil, err
	}

	return NewContent(nameFromURL(u), data, resp.Header.Get("Content-Type")), nil
}

// File reads a local file, reading at most maxBytes.
func File(p string, maxBytes int64) (*Content, error) {
	file, err := os.Open(filepath.Clean(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, p, info.Size(), maxBytes)
		}
	}

	data, err := ReadAll(file, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	return NewContent(filepath.Base(p), data, ""), nil
}

// ReadAll reads r fully, failing with ErrTooLarge past maxBytes.
// A maxBytes of zero or less disables the limit.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	lr := &io.LimitedReader{R: r, N: maxBytes + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// validate parses rawURL and checks its scheme and host.
func (f *Fetcher) validate(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrURLNotAllowed, err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrURLNotAllowed)
	}

	onion := tor.IsOnionHost(host)
	if onion {
		if !f.onion {
			return nil, fmt.Errorf("%w: onion host %s requires a Tor proxy", ErrURLNotAllowed, host)
		}
		if err := tor.ValidateHost(host); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrURLNotAllowed, err)
		}
	}

	private := host == "localhost" || strings.HasSuffix(host, ".localhost")
	if ip := net.ParseIP(host); ip != nil {
		private = private || isPrivateOrLocalIP(ip)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if !onion && (!f.allowPrivate || !private) {
			return nil, fmt.Errorf("%w: scheme must be https", ErrURLNotAllowed)
		}
	default:
		return nil, fmt.Errorf("%w: scheme must be https", ErrURLNotAllowed)
	}

	if private && !f.allowPrivate {
		return nil, fmt.Errorf("%w: host %s is private", ErrURLNotAllowed, host)
	}
	return u, nil
}

func allowPrivateFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(AllowPrivateEnv))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func isPrivateOrLocalIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() ||
		ip.IsMulticast() || ip.IsUnspecified() || ip.IsPrivate() {
		return true
	}
	// 100.64.0.0/10 carrier-grade NAT
	if v4 := ip.To4(); v4 != nil && v4[0] == 100 && v4[1] >= 64 && v4[1] <= 127 {
		return true
	}
	return false
}

func nameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultName
	}
	return name
}

// sniff detects the media type of data, falling back to the given
// Content-Type header value.
func sniff(data []byte, header string) string {
	if len(data) > 0 {
		if m := mimetype.Detect(data); m != nil && m.String() != "application/octet-stream" {
			return m.String()
		}
	}
	mt := strings.ToLower(strings.TrimSpace(header))
	if i := strings.Index(mt, ";"); i > 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "" {
		return "application/octet-stream"
	}
	return mt
}
