package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	serrors "github.com/slinkshare/slink/internal/errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS files (
	identifier CHAR(36) NOT NULL PRIMARY KEY,
	filename TEXT NOT NULL,
	digest TEXT NOT NULL DEFAULT '',
	date_added TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS shares (
	identifier CHAR(36) NOT NULL,
	recipient TEXT NOT NULL,
	link_token TEXT NOT NULL,
	date_shared TEXT NOT NULL,
	date_removed TEXT,
	active BOOLEAN NOT NULL DEFAULT 1,
	PRIMARY KEY (identifier, recipient),
	FOREIGN KEY (identifier) REFERENCES files(identifier)
);
CREATE INDEX IF NOT EXISTS files_filename ON files(filename);
CREATE INDEX IF NOT EXISTS shares_link_token ON shares(link_token);
`

// File is a stored file's identity record.
type File struct {
	Identifier string
	Filename   string
	Digest     string
	DateAdded  time.Time
}

// FileSummary is a File with its number of active shares.
type FileSummary struct {
	File
	ActiveShares int
}

// Share is the current grant for one recipient of one file.
type Share struct {
	Identifier  string
	Recipient   string
	LinkToken   string
	DateShared  time.Time
	DateRemoved *time.Time
	Active      bool
}

// Stats summarises the ledger for reporting.
type Stats struct {
	Files        int
	Shares       int
	ActiveShares int
	// Oldest is nil when the ledger holds no files.
	Oldest *time.Time
}

// Ledger is the share ledger.
type Ledger struct {
	db *sql.DB
}

// New wraps an existing database handle. The schema is not created.
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Open opens (creating if needed) the ledger database at path and ensures
// the schema exists.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: ledger path is empty", serrors.ErrConfiguration)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w: %w", serrors.ErrLedger, err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, serrors.ErrLedger, err)
	}

	l := New(db)
	if err := l.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// dsn builds a modernc.org/sqlite data source name with WAL journaling and
// a busy timeout applied to every connection. The path is percent-encoded
// so '?', '#' and '%' in it reach SQLite's URI parser as part of the name.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + q.Encode()
}

// Migrate creates the tables and indexes if they do not exist.
func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w: %w", serrors.ErrLedger, err)
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// InsertFile records a new file. A primary key collision returns
// ErrDuplicateIdentifier.
func (l *Ledger) InsertFile(ctx context.Context, f File) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO files (identifier, filename, digest, date_added) VALUES (?, ?, ?, ?)",
		f.Identifier, f.Filename, f.Digest, formatTime(f.DateAdded))
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("inserting %s: %w", f.Identifier, serrors.ErrDuplicateIdentifier)
		}
		return fmt.Errorf("inserting %s: %w: %w", f.Identifier, serrors.ErrLedger, err)
	}
	return nil
}

// GetFile returns the file record for identifier, or ErrNotFound.
func (l *Ledger) GetFile(ctx context.Context, identifier string) (*File, error) {
	row := l.db.QueryRowContext(ctx,
		"SELECT identifier, filename, digest, date_added FROM files WHERE identifier = ?",
		identifier)

	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", identifier, serrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	return f, nil
}

// FindByName returns the files named filename, oldest first.
func (l *Ledger) FindByName(ctx context.Context, filename string) ([]File, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT identifier, filename, digest, date_added FROM files WHERE filename = ? ORDER BY date_added, identifier",
		filename)
	if err != nil {
		return nil, fmt.Errorf("finding %q: %w: %w", filename, serrors.ErrLedger, err)
	}
	defer func() { _ = rows.Close() }()

	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w: %w", filename, serrors.ErrLedger, err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding %q: %w: %w", filename, serrors.ErrLedger, err)
	}
	return files, nil
}

// ListFiles returns every file with its active share count, newest first.
func (l *Ledger) ListFiles(ctx context.Context) ([]FileSummary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT f.identifier, f.filename, f.digest, f.date_added, COUNT(s.identifier)
		FROM files f
		LEFT JOIN shares s ON f.identifier = s.identifier AND s.active = 1
		GROUP BY f.identifier
		ORDER BY f.date_added DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w: %w", serrors.ErrLedger, err)
	}
	defer func() { _ = rows.Close() }()

	var files []FileSummary
	for rows.Next() {
		var (
			s     FileSummary
			added string
		)
		if err := rows.Scan(&s.Identifier, &s.Filename, &s.Digest, &added, &s.ActiveShares); err != nil {
			return nil, fmt.Errorf("listing files: %w: %w", serrors.ErrLedger, err)
		}
		if s.DateAdded, err = parseTime(added); err != nil {
			return nil, fmt.Errorf("listing files: %w: %w", serrors.ErrLedger, err)
		}
		files = append(files, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing files: %w: %w", serrors.ErrLedger, err)
	}
	return files, nil
}

// DeleteFile removes the file record. Share rows are kept as history.
func (l *Ledger) DeleteFile(ctx context.Context, identifier string) error {
	if _, err := l.db.ExecContext(ctx, "DELETE FROM files WHERE identifier = ?", identifier); err != nil {
		return fmt.Errorf("deleting %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	return nil
}

// UpsertShare records an active grant, replacing any earlier grant for the
// same identifier and recipient.
func (l *Ledger) UpsertShare(ctx context.Context, identifier, recipient, token string, at time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO shares (identifier, recipient, link_token, date_shared, date_removed, active)
		VALUES (?, ?, ?, ?, NULL, 1)`,
		identifier, recipient, token, formatTime(at))
	if err != nil {
		return fmt.Errorf("sharing %s with %q: %w: %w", identifier, recipient, serrors.ErrLedger, err)
	}
	return nil
}

// DeactivateShare marks the active grant for recipient as removed and
// reports whether there was one.
func (l *Ledger) DeactivateShare(ctx context.Context, identifier, recipient string, at time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		UPDATE shares SET active = 0, date_removed = ?
		WHERE identifier = ? AND recipient = ? AND active = 1`,
		formatTime(at), identifier, recipient)
	if err != nil {
		return false, fmt.Errorf("unsharing %s from %q: %w: %w", identifier, recipient, serrors.ErrLedger, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsharing %s from %q: %w: %w", identifier, recipient, serrors.ErrLedger, err)
	}
	return n > 0, nil
}

// DeactivateShares marks every active grant of identifier as removed and
// returns how many there were.
func (l *Ledger) DeactivateShares(ctx context.Context, identifier string, at time.Time) (int, error) {
	res, err := l.db.ExecContext(ctx, `
		UPDATE shares SET active = 0, date_removed = ?
		WHERE identifier = ? AND active = 1`,
		formatTime(at), identifier)
	if err != nil {
		return 0, fmt.Errorf("revoking shares of %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoking shares of %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	return int(n), nil
}

// Shares returns every grant recorded for identifier, oldest first.
func (l *Ledger) Shares(ctx context.Context, identifier string) ([]Share, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT identifier, recipient, link_token, date_shared, date_removed, active
		FROM shares WHERE identifier = ? ORDER BY date_shared, recipient`,
		identifier)
	if err != nil {
		return nil, fmt.Errorf("reading shares of %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	defer func() { _ = rows.Close() }()

	var shares []Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("reading shares of %s: %w: %w", identifier, serrors.ErrLedger, err)
		}
		shares = append(shares, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading shares of %s: %w: %w", identifier, serrors.ErrLedger, err)
	}
	return shares, nil
}

// ActiveTokens maps every active link token to its identifier.
func (l *Ledger) ActiveTokens(ctx context.Context) (map[string]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT link_token, identifier FROM shares WHERE active = 1")
	if err != nil {
		return nil, fmt.Errorf("reading active tokens: %w: %w", serrors.ErrLedger, err)
	}
	defer func() { _ = rows.Close() }()

	tokens := make(map[string]string)
	for rows.Next() {
		var token, identifier string
		if err := rows.Scan(&token, &identifier); err != nil {
			return nil, fmt.Errorf("reading active tokens: %w: %w", serrors.ErrLedger, err)
		}
		tokens[token] = identifier
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading active tokens: %w: %w", serrors.ErrLedger, err)
	}
	return tokens, nil
}

// Stats returns file and share counts and the oldest file date.
func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	var (
		s      Stats
		oldest sql.NullString
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM files),
			(SELECT COUNT(*) FROM shares),
			(SELECT COUNT(*) FROM shares WHERE active = 1),
			(SELECT MIN(date_added) FROM files)`).
		Scan(&s.Files, &s.Shares, &s.ActiveShares, &oldest)
	if err != nil {
		return nil, fmt.Errorf("reading statistics: %w: %w", serrors.ErrLedger, err)
	}
	if oldest.Valid {
		t, err := parseTime(oldest.String)
		if err != nil {
			return nil, fmt.Errorf("reading statistics: %w: %w", serrors.ErrLedger, err)
		}
		s.Oldest = &t
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*File, error) {
	var (
		f     File
		added string
	)
	if err := row.Scan(&f.Identifier, &f.Filename, &f.Digest, &added); err != nil {
		return nil, err
	}
	t, err := parseTime(added)
	if err != nil {
		return nil, err
	}
	f.DateAdded = t
	return &f, nil
}

func scanShare(row scanner) (*Share, error) {
	var (
		s       Share
		shared  string
		removed sql.NullString
	)
	if err := row.Scan(&s.Identifier, &s.Recipient, &s.LinkToken, &shared, &removed, &s.Active); err != nil {
		return nil, err
	}
	t, err := parseTime(shared)
	if err != nil {
		return nil, err
	}
	s.DateShared = t
	if removed.Valid {
		r, err := parseTime(removed.String)
		if err != nil {
			return nil, err
		}
		s.DateRemoved = &r
	}
	return &s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}
