package stopwords

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage is the language used when none is configured.
const DefaultLanguage = "english"

// ErrUnknownLanguage is returned for a language without a built-in list.
var ErrUnknownLanguage = errors.New("unknown stop-word language")

//go:embed lists/*.txt
var lists embed.FS

// Set is an immutable set of stop words.
type Set struct {
	words map[string]struct{}
}

// NewSet creates a set from the given words after normalizing them.
func NewSet(words ...string) Set {
	s := Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = normalize(w); w != "" {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is a stop word.
// The word is expected to be normalized already.
func (s Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words in the set.
func (s Set) Len() int {
	return len(s.words)
}

// Words returns the words in sorted order.
func (s Set) Words() []string {
	words := make([]string, 0, len(s.words))
	for w := range s.words {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Union returns a new set containing the words of s and other.
func (s Set) Union(other Set) Set {
	u := Set{words: make(map[string]struct{}, len(s.words)+len(other.words))}
	for w := range s.words {
		u.words[w] = struct{}{}
	}
	for w := range other.words {
		u.words[w] = struct{}{}
	}
	return u
}

// Parse reads a stop-word list with one word per line.
// Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) (Set, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("failed to read stop words: %w", err)
	}
	return NewSet(words...), nil
}

// LoadFile reads a custom stop-word list from path.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return Set{}, fmt.Errorf("failed to open stop-word file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func normalize(word string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(word)))
}

// Languages returns the names of the built-in lists.
func Languages() []string {
	entries, err := lists.ReadDir("lists")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return names
}

// IsSupported reports whether lang has a built-in list.
func IsSupported(lang string) bool {
	return slices.Contains(Languages(), lang)
}

type entry struct {
	once sync.Once
	set  Set
	err  error
}

// Catalog hands out built-in stop-word sets, parsing each list at most once.
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for the catalog.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the built-in set for lang.
func (c *Catalog) Get(lang string) (Set, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !IsSupported(lang) {
		return Set{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}

	c.mu.Lock()
	e, ok := c.entries[lang]
	if !ok {
		e = &entry{}
		c.entries[lang] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		f, err := lists.Open("lists/" + lang + ".txt")
		if err != nil {
			e.err = fmt.Errorf("failed to open built-in list %q: %w", lang, err)
			return
		}
		defer f.Close()
		e.set, e.err = Parse(f)
		c.logger.Debug("loaded stop words", "language", lang, "count", e.set.Len())
	})
	return e.set, e.err
}

// Resolve builds the effective stop-word set: the built-in list for lang,
// or the file at customPath if set, extended with extra words.
func (c *Catalog) Resolve(lang, customPath string, extra []string) (Set, error) {
	var (
		base Set
		err  error
	)
	if customPath != "" {
		base, err = LoadFile(customPath)
	} else {
		base, err = c.Get(lang)
	}
	if err != nil {
		return Set{}, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	return base.Union(NewSet(extra...)), nil
}
