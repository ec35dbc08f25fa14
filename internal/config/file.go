package config

import "time"

// AnalysisSection configures tokenization and metrics.
type AnalysisSection struct {
	// Language selects the built-in stop-word list, e.g. "english".
	Language string `yaml:"language,omitempty"`

	// StopWordsFile replaces the built-in list with a custom file.
	StopWordsFile string `yaml:"stopWordsFile,omitempty"`

	// ExtraStopWords are added to the active list.
	ExtraStopWords []string `yaml:"extraStopWords,omitempty"`

	// MinTokenLength overrides the minimum token length if non-zero.
	MinTokenLength int `yaml:"minTokenLength,omitempty"`

	// TopN overrides the number of top words if non-zero.
	TopN int `yaml:"topN,omitempty"`

	// Keywords are target keywords reported for every document.
	Keywords []string `yaml:"keywords,omitempty"`

	// UseCorpus enables tf-idf importance against the reference corpus.
	UseCorpus bool `yaml:"useCorpus,omitempty"`

	// CorpusDir overrides the corpus database directory.
	CorpusDir string `yaml:"corpusDir,omitempty"`

	// Proxy is a SOCKS5 proxy for URL downloads, e.g. 127.0.0.1:9050.
	Proxy string `yaml:"proxy,omitempty"`

	// Tor downloads URLs through an embedded Tor daemon.
	Tor bool `yaml:"tor,omitempty"`
}

// ServerSection configures the web server.
type ServerSection struct {
	Addr           string        `yaml:"addr,omitempty"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes,omitempty"`
	RateLimitEvery time.Duration `yaml:"rateLimitEvery,omitempty"`
	RateLimitBurst int           `yaml:"rateLimitBurst,omitempty"`
	MaxConcurrent  int           `yaml:"maxConcurrent,omitempty"`
}

// DriveSection configures Google Drive access.
type DriveSection struct {
	CredentialsFile string `yaml:"credentialsFile,omitempty"`
	TokenFile       string `yaml:"tokenFile,omitempty"`
}

// File represents the structure of the .docmetrics configuration file.
type File struct {
	Analysis AnalysisSection `yaml:"analysis,omitempty"`
	Server   ServerSection   `yaml:"server,omitempty"`
	Drive    DriveSection    `yaml:"drive,omitempty"`
}

// Apply copies the values set in the file onto cfg.
// Zero values leave the corresponding setting unchanged.
func (cf *File) Apply(cfg *Config) {
	a := cf.Analysis
	setString(&cfg.Language, a.Language)
	setString(&cfg.StopWordsFile, a.StopWordsFile)
	setString(&cfg.CorpusDir, a.CorpusDir)
	setString(&cfg.Proxy, a.Proxy)
	setInt(&cfg.MinTokenLength, a.MinTokenLength)
	setInt(&cfg.TopN, a.TopN)
	if len(a.ExtraStopWords) > 0 {
		cfg.ExtraStopWords = append(cfg.ExtraStopWords, a.ExtraStopWords...)
	}
	if len(a.Keywords) > 0 {
		cfg.Keywords = append(cfg.Keywords, a.Keywords...)
	}
	if a.UseCorpus {
		cfg.UseCorpus = true
	}
	if a.Tor {
		cfg.Tor = true
	}

	s := cf.Server
	setString(&cfg.Server.Addr, s.Addr)
	if s.MaxUploadBytes != 0 {
		cfg.MaxUploadBytes = s.MaxUploadBytes
	}
	if s.RateLimitEvery != 0 {
		cfg.Server.RateLimitEvery = s.RateLimitEvery
	}
	setInt(&cfg.Server.RateLimitBurst, s.RateLimitBurst)
	setInt(&cfg.Server.MaxConcurrent, s.MaxConcurrent)

	setString(&cfg.Drive.CredentialsFile, cf.Drive.CredentialsFile)
	setString(&cfg.Drive.TokenFile, cf.Drive.TokenFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
