package corpus

import (
	"context"
	"maps"
	"sync"
)

// Table is an immutable in-memory view of the corpus.
// It implements metrics.ReferenceCorpus.
type Table struct {
	size int
	df   map[string]int
}

// NewTable creates a table for size documents with the given document
// frequencies. The map is copied.
func NewTable(size int, df map[string]int) *Table {
	return &Table{size: size, df: maps.Clone(df)}
}

// DocumentFrequency returns the number of documents containing term.
func (t *Table) DocumentFrequency(term string) int {
	return t.df[term]
}

// Size returns the number of documents.
func (t *Table) Size() int {
	return t.size
}

// Terms returns the number of distinct terms.
func (t *Table) Terms() int {
	return len(t.df)
}

// Lazy loads a Table on first use and returns the same Table, or the same
// error, on every later call. It is safe for concurrent use.
type Lazy struct {
	load  func(ctx context.Context) (*Table, error)
	once  sync.Once
	table *Table
	err   error
}

// NewLazy wraps a loader such as Store.Snapshot.
func NewLazy(load func(ctx context.Context) (*Table, error)) *Lazy {
	return &Lazy{load: load}
}

// Get returns the loaded table, loading it with ctx on the first call.
func (l *Lazy) Get(ctx context.Context) (*Table, error) {
	l.once.Do(func() {
		l.table, l.err = l.load(ctx)
	})
	return l.table, l.err
}
