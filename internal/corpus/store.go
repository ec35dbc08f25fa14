package corpus

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the data directory.
const FileName = "corpus.db"

// Store provides SQLite-based storage for the reference corpus.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now stamps added documents.
	now func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the corpus database in dir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping ErrNotFound is returned.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per distinct document content
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sha256 TEXT NOT NULL UNIQUE,
		token_count INTEGER NOT NULL,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_added ON documents(added_at);

	-- Number of documents containing each term
	CREATE TABLE IF NOT EXISTS terms (
		term TEXT PRIMARY KEY,
		df INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Hash returns the content hash used to identify documents.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Add records a document and increments the document frequency of each
// distinct term. Adding the same content again changes nothing and
// reports false.
func (s *Store) Add(ctx context.Context, name string, content []byte, tokens []string) (bool, error) {
	hash := Hash(content)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO documents (name, sha256, token_count, added_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(sha256) DO NOTHING
	`, name, hash, len(tokens), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to insert document: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("failed to insert document: %w", err)
	} else if n == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO terms (term, df) VALUES (?, 1)
	ON CONFLICT(term) DO UPDATE SET df = df + 1
	`)
	if err != nil {
		return false, fmt.Errorf("failed to prepare term update: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if _, err := stmt.ExecContext(ctx, tok); err != nil {
			return false, fmt.Errorf("failed to update term %q: %w", tok, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit document: %w", err)
	}
	return true, nil
}

// Reset removes all documents and terms.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	for _, table := range []string{"documents", "terms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Snapshot loads the current corpus into an immutable Table.
func (s *Store) Snapshot(ctx context.Context) (*Table, error) {
	var size int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&size); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT term, df FROM terms")
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	df := make(map[string]int)
	for rows.Next() {
		var (
			term  string
			count int
		)
		if err := rows.Scan(&term, &count); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		df[term] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read terms: %w", err)
	}
	return NewTable(size, df), nil
}

// DocumentRecord is a stored corpus document.
type DocumentRecord struct {
	ID         int64
	Name       string
	SHA256     string
	TokenCount int
	AddedAt    time.Time
}

// Documents lists stored documents, most recently added first.
func (s *Store) Documents(ctx context.Context, limit int) ([]DocumentRecord, error) {
	query := `
	SELECT id, name, sha256, token_count, added_at
	FROM documents
	ORDER BY added_at DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var (
			rec     DocumentRecord
			addedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.SHA256, &rec.TokenCount, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		rec.AddedAt = parseTimestamp(addedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Info summarizes the corpus.
type Info struct {
	Path      string
	Documents int
	Terms     int
	LastAdded time.Time
}

// Info returns document and term counts and the time of the last addition.
func (s *Store) Info(ctx context.Context) (Info, error) {
	info := Info{Path: s.dbPath}

	var lastAdded sql.NullString
	err := s.db.QueryRowContext(ctx, `
	SELECT (SELECT COUNT(*) FROM documents),
	       (SELECT COUNT(*) FROM terms),
	       (SELECT MAX(added_at) FROM documents)
	`).Scan(&info.Documents, &info.Terms, &lastAdded)
	if err != nil {
		return Info{}, fmt.Errorf("failed to query corpus info: %w", err)
	}
	if lastAdded.Valid {
		info.LastAdded = parseTimestamp(lastAdded.String)
	}
	return info, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// It returns the zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
