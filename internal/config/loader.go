package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".docmetrics"

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DOCMETRICS_"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ErrConfigExists is returned by WriteTemplate when the file exists.
var ErrConfigExists = errors.New("configuration file already exists")

//go:embed template.yaml
var template []byte

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .docmetrics in the current directory
// 3. Look for .docmetrics in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Load builds the effective configuration: defaults, then the config file
// (if found), then DOCMETRICS_* variables. An explicitly given config
// path that does not exist is an error.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	if path := FindConfigFile(configPath); path != "" {
		cf, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cf.Apply(cfg)
		cfg.ConfigFilePath = path
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process
// environment without overriding variables that are already set.
// Missing files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with DOCMETRICS_* variables looked up by lookup.
// List values are comma-separated.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("LANGUAGE"); ok {
		cfg.Language = v
	}
	if v, ok := get("STOP_WORDS_FILE"); ok {
		cfg.StopWordsFile = v
	}
	if v, ok := get("EXTRA_STOP_WORDS"); ok {
		cfg.ExtraStopWords = append(cfg.ExtraStopWords, splitList(v)...)
	}
	if v, ok := get("KEYWORDS"); ok {
		cfg.Keywords = append(cfg.Keywords, splitList(v)...)
	}
	if v, ok := get("CORPUS_DIR"); ok {
		cfg.CorpusDir = v
	}
	if v, ok := get("PROXY"); ok {
		cfg.Proxy = v
	}
	if v, ok := get("ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := get("CREDENTIALS_FILE"); ok {
		cfg.Drive.CredentialsFile = v
	}
	if v, ok := get("TOKEN_FILE"); ok {
		cfg.Drive.TokenFile = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MIN_TOKEN_LENGTH", &cfg.MinTokenLength},
		{"TOP_N", &cfg.TopN},
		{"BATCH_SIZE", &cfg.BatchSize},
		{"RATE_LIMIT_BURST", &cfg.Server.RateLimitBurst},
		{"MAX_CONCURRENT", &cfg.Server.MaxConcurrent},
	}
	for _, e := range ints {
		v, ok := get(e.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = n
	}

	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxUploadBytes = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT", &cfg.Timeout},
		{"RATE_LIMIT_EVERY", &cfg.Server.RateLimitEvery},
	}
	for _, e := range durations {
		v, ok := get(e.name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = d
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"USE_CORPUS", &cfg.UseCorpus},
		{"TOR", &cfg.Tor},
	}
	for _, e := range bools {
		v, ok := get(e.name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = b
	}
	return nil
}

// Template returns the annotated configuration file template.
func Template() []byte {
	return append([]byte(nil), template...)
}

// WriteTemplate writes the template to path. It refuses to overwrite an
// existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.WriteFile(path, template, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
