// Package corpus provides the SQLite-backed reference corpus used for
// tf-idf keyword importance.
//
// The Store records every added document once, identified by the SHA-256
// of its content, and keeps a document frequency per term. Analyses do
// not query the database directly: Snapshot loads an immutable in-memory
// Table, and Lazy defers that load until the first analysis needs it.
//
// The database is a single file opened with modernc.org/sqlite, which is
// CGO-free.
package corpus
