package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/docmetrics/internal/report"
	"github.com/nao1215/docmetrics/internal/stopwords"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docmetrics"

	// DefaultLanguage selects the built-in English stop-word list.
	DefaultLanguage = stopwords.DefaultLanguage

	// DefaultMinTokenLength drops single-character tokens such as stray
	// initials after filtering.
	DefaultMinTokenLength = 2

	// DefaultTopN is the number of most frequent words reported.
	DefaultTopN = 10

	// DefaultBatchSize is the number of documents analyzed concurrently.
	DefaultBatchSize = 4

	// DefaultTimeout bounds each remote download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxUploadBytes limits each uploaded or downloaded document.
	DefaultMaxUploadBytes = 10 << 20

	// DefaultServerAddr is the listen address of the web server.
	DefaultServerAddr = "127.0.0.1:8080"

	// DefaultRateLimitEvery is the minimum interval between requests of one
	// client once its burst is used up.
	DefaultRateLimitEvery = 200 * time.Millisecond

	// DefaultRateLimitBurst is the number of requests a client may send at
	// once.
	DefaultRateLimitBurst = 20

	// DefaultMaxConcurrent is the number of analyses the server runs at
	// the same time.
	DefaultMaxConcurrent = 4

	// DefaultDriveLimit is the number of Drive files listed.
	DefaultDriveLimit = 100

	// DefaultMaxLinks is the number of documents followed per HTML page.
	DefaultMaxLinks = 50
)

// Config holds all configuration options for docmetrics.
// It is populated from the config file, the environment and CLI flags, in
// that order, and passed through the application explicitly.
type Config struct {
	// Inputs are the DOCX files or HTTPS URLs to analyze.
	Inputs []string

	// Language selects the built-in stop-word list.
	Language string

	// StopWordsFile is a custom stop-word list, one word per line.
	// When set it replaces the built-in list.
	StopWordsFile string

	// ExtraStopWords are added to the active stop-word list.
	ExtraStopWords []string

	// MinTokenLength drops shorter tokens after stop-word filtering.
	// A value of 1 keeps every token.
	MinTokenLength int

	// TopN is the number of most frequent words reported.
	TopN int

	// Keywords are target keywords or phrases whose density is reported.
	Keywords []string

	// UseCorpus enables tf-idf importance against the reference corpus.
	UseCorpus bool

	// CorpusDir is the directory holding the reference corpus database.
	// Defaults to the XDG data directory.
	CorpusDir string

	// BatchSize is the number of documents analyzed concurrently.
	BatchSize int

	// Timeout bounds each remote download.
	Timeout time.Duration

	// Proxy is a SOCKS5 proxy address for URL downloads. Empty connects
	// directly.
	Proxy string

	// Tor starts an embedded Tor daemon and downloads URLs through it.
	// Mutually exclusive with Proxy.
	Tor bool

	// FollowLinks treats URL inputs that return an HTML page as a list of
	// DOCX links and analyzes the linked documents.
	FollowLinks bool

	// MaxLinks limits the documents followed per page.
	MaxLinks int

	// MaxUploadBytes limits the size of each document.
	MaxUploadBytes int64

	// Format is the report format name, see report.Formats.
	Format string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .docmetrics in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Server holds web server settings.
	Server ServerConfig

	// Drive holds Google Drive settings.
	Drive DriveConfig
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string

	// RateLimitEvery is the refill interval of the per-client token bucket.
	// Zero disables rate limiting.
	RateLimitEvery time.Duration

	// RateLimitBurst is the bucket size of the per-client token bucket.
	RateLimitBurst int

	// MaxConcurrent limits analyses running at the same time.
	MaxConcurrent int
}

// DriveConfig holds Google Drive settings.
type DriveConfig struct {
	// CredentialsFile is the OAuth client credentials JSON file.
	CredentialsFile string

	// TokenFile stores the OAuth token.
	TokenFile string

	// FolderID restricts listings to one folder.
	FolderID string

	// Query searches document contents instead of listing.
	Query string

	// Limit is the number of files listed.
	Limit int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Language:       DefaultLanguage,
		MinTokenLength: DefaultMinTokenLength,
		TopN:           DefaultTopN,
		CorpusDir:      XDGDataDir(),
		BatchSize:      DefaultBatchSize,
		Timeout:        DefaultTimeout,
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxLinks:       DefaultMaxLinks,
		Format:         string(report.FormatText),
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			RateLimitEvery: DefaultRateLimitEvery,
			RateLimitBurst: DefaultRateLimitBurst,
			MaxConcurrent:  DefaultMaxConcurrent,
		},
		Drive: DriveConfig{
			CredentialsFile: filepath.Join(XDGConfigDir(), "credentials.json"),
			TokenFile:       filepath.Join(XDGConfigDir(), "token.json"),
			Limit:           DefaultDriveLimit,
		},
	}
}

// XDGDataDir returns the XDG data directory for docmetrics.
// On Linux: ~/.local/share/docmetrics
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docmetrics.
// On Linux: ~/.config/docmetrics
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ExportDir returns the default directory for exported reports.
func ExportDir() string {
	return filepath.Join(XDGDataDir(), "exports")
}

// ReportFormat resolves the output format. The --json and --markdown
// shortcuts take precedence over Format.
func (c *Config) ReportFormat() (report.Format, error) {
	switch {
	case c.JSONReport:
		return report.FormatJSON, nil
	case c.MarkdownReport:
		return report.FormatMarkdown, nil
	}
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return "", ErrUnknownFormat
	}
	return f, nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
// Inputs are checked separately by ValidateInputs because the server
// and Drive commands take no positional inputs.
func (c *Config) Validate() error {
	if c.MinTokenLength < 1 {
		return ErrInvalidMinTokenLength
	}
	if c.TopN <= 0 {
		return ErrInvalidTopN
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, err := c.ReportFormat(); err != nil {
		return err
	}
	if c.StopWordsFile == "" && c.Language != "" && !stopwords.IsSupported(strings.ToLower(c.Language)) {
		return ErrUnknownLanguage
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidMaxUploadSize
	}
	if c.Server.RateLimitEvery < 0 || c.Server.RateLimitBurst < 1 {
		return ErrInvalidRateLimit
	}
	if c.Server.MaxConcurrent <= 0 {
		return ErrInvalidMaxConcurrent
	}
	if c.Tor && c.Proxy != "" {
		return ErrConflictingProxy
	}
	if c.MaxLinks < 0 {
		return ErrInvalidMaxLinks
	}
	return nil
}

// ValidateInputs checks that at least one input is given.
func (c *Config) ValidateInputs() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	return nil
}
