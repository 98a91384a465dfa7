package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store is the library index: one SQLite file shared by the scanner (writer)
// and the browsing side (readers).
type Store struct {
	db   *sql.DB
	path string
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	BusyTimeout  time.Duration // how long a writer waits for the lock (default 5s)
	MaxOpenConns int           // pool size; readers use the spare connections (default 4)
}

// Open opens or creates the library database at the given path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens or creates the library database with custom options.
// The schema is migrated before the store is returned; a failed migration
// leaves the file as it was and returns an error.
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 4
	}

	db, err := sql.Open("sqlite", buildDSN(path, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets readers keep a snapshot while the scanner writes
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db, path: path}

	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// buildDSN sets pragmas per connection so every pooled connection enforces
// foreign keys, and write transactions take the lock at BEGIN.
func buildDSN(path string, opts *OpenOptions) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for read-side packages
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check and foreign_key_check on the database
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var result string
	err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check query failed: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		return fmt.Errorf("foreign key check failed: dangling references present")
	}

	return rows.Err()
}

// Transaction executes a function within a transaction. The transaction is
// rolled back if fn fails or ctx is cancelled before commit.
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Artist is a performer owning one or more albums
type Artist struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	NameSortable string `db:"name_sortable"`
}

// Album is a release identified by (title, artist, mbid)
type Album struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	TitleSortable  string         `db:"title_sortable"`
	ArtistID       sql.NullInt64  `db:"artist_id"`
	ReleaseDate    sql.NullString `db:"release_date"`
	ReleaseYear    sql.NullInt64  `db:"release_year"`
	DatePrecision  sql.NullInt64  `db:"date_precision"`
	SortDate       sql.NullString `db:"sort_date"`
	Label          sql.NullString `db:"label"`
	CatalogNumber  sql.NullString `db:"catalog_number"`
	ISRC           sql.NullString `db:"isrc"`
	MBID           string         `db:"mbid"`
	VinylNumbering bool           `db:"vinyl_numbering"`
}

// Track is a single audio file in the library
type Track struct {
	ID            int64          `db:"id"`
	Title         string         `db:"title"`
	TitleSortable string         `db:"title_sortable"`
	AlbumID       sql.NullInt64  `db:"album_id"`
	TrackNumber   sql.NullInt64  `db:"track_number"`
	DiscNumber    sql.NullInt64  `db:"disc_number"`
	Duration      int64          `db:"duration"`
	Location      string         `db:"location"`
	Genre         sql.NullString `db:"genre"`
	ArtistNames   sql.NullString `db:"artist_names"`
	Folder        string         `db:"folder"`
}

// AlbumPath links a folder and disc number to the album it supplies
type AlbumPath struct {
	AlbumID int64
	Path    string
	DiscNum int64
}

// Playlist is an ordered list of tracks
type Playlist struct {
	ID   int64
	Name string
}
