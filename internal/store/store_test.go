package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/music-index/internal/util"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func requireClean(t *testing.T, s *Store) {
	t.Helper()
	violations, err := s.CheckInvariants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestStoreOpenAndMigrate(t *testing.T) {
	s := openTestStore(t)

	tables := []string{"artist", "album", "track", "album_path", "playlist", "playlist_item", "scan_record", "scan_root"}
	for _, table := range tables {
		assert.Equal(t, 1, countRows(t, s,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table), "table %s", table)
	}

	indexes := []string{"idx_album_natural_key", "idx_album_release_date", "idx_album_sort_date", "idx_album_path_path"}
	for _, index := range indexes {
		assert.Equal(t, 1, countRows(t, s,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", index), "index %s", index)
	}

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	require.NoError(t, s.CheckIntegrity(context.Background()))
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.UpsertAlbum(context.Background(), AlbumFields{Title: "Moon Safari", ReleaseYear: 1998})
	require.NoError(t, err)
	require.NoError(t, s.migrate(context.Background()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM album"))
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM album WHERE sort_date = '1998-01-01'"))
}

// legacyAlbums builds a store in the historical shape: no date precision,
// no generated sort date, free-form release dates.
func legacyAlbums(t *testing.T, path string, rows [][]any) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE artist (
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  name TEXT NOT NULL UNIQUE,
		  name_sortable TEXT NOT NULL,
		  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE album (
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  title TEXT NOT NULL,
		  title_sortable TEXT NOT NULL,
		  artist_id INTEGER REFERENCES artist(id),
		  image BLOB,
		  thumb BLOB,
		  release_date TEXT,
		  release_year INTEGER,
		  label TEXT,
		  catalog_number TEXT,
		  isrc TEXT,
		  mbid TEXT NOT NULL DEFAULT 'none',
		  vinyl_numbering INTEGER NOT NULL DEFAULT 0,
		  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	require.NoError(t, err)

	for _, r := range rows {
		_, err := db.Exec("INSERT INTO album (title, title_sortable, release_date, release_year) VALUES (?, ?, ?, ?)",
			r[0], r[0], r[1], r[2])
		require.NoError(t, err)
	}
}

func TestMigrateLegacyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacyAlbums(t, path, [][]any{
		{"Moon Safari", nil, 1998},
		{"Talkie Walkie", "2004/01/26", 2004},
		{"Premiers Symptomes", "1997", nil},
		{"Pocket Symphony", "sometime", 2007},
		{"Untitled", "garbage", nil},
		{"Undated", nil, nil},
	})

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	type dated struct {
		date      sql.NullString
		year      sql.NullInt64
		precision sql.NullInt64
		sortDate  sql.NullString
	}
	get := func(title string) dated {
		var d dated
		require.NoError(t, s.db.QueryRow(
			"SELECT release_date, release_year, date_precision, sort_date FROM album WHERE title = ?", title,
		).Scan(&d.date, &d.year, &d.precision, &d.sortDate))
		return d
	}

	// Year only: synthesized date at year precision
	d := get("Moon Safari")
	assert.Equal(t, "1998-01-01", d.date.String)
	assert.Equal(t, int64(PrecisionYear), d.precision.Int64)
	assert.Equal(t, "1998-01-01", d.sortDate.String)

	// Exact date: canonicalized, day precision
	d = get("Talkie Walkie")
	assert.Equal(t, "2004-01-26", d.date.String)
	assert.Equal(t, int64(PrecisionDay), d.precision.Int64)
	assert.Equal(t, "2004-01-26", d.sortDate.String)

	// A legacy date holding only a year moves into release_year
	d = get("Premiers Symptomes")
	assert.Equal(t, int64(1997), d.year.Int64)
	assert.Equal(t, "1997-01-01", d.date.String)
	assert.Equal(t, int64(PrecisionYear), d.precision.Int64)

	// Malformed date falls back to the year
	d = get("Pocket Symphony")
	assert.Equal(t, "2007-01-01", d.date.String)
	assert.Equal(t, int64(PrecisionYear), d.precision.Int64)

	// Malformed date and no year: undated
	d = get("Untitled")
	assert.False(t, d.date.Valid)
	assert.False(t, d.precision.Valid)
	assert.False(t, d.sortDate.Valid)

	d = get("Undated")
	assert.False(t, d.sortDate.Valid)
}

func TestMigrateFailureLeavesStoreUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	// An album table without the natural-key columns cannot take the unique index
	_, err = db.Exec(`
		CREATE TABLE album (id INTEGER PRIMARY KEY, title TEXT NOT NULL, release_year INTEGER);
		INSERT INTO album (title, release_year) VALUES ('Moon Safari', 1998);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrMigration))

	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&tables))
	assert.Equal(t, 1, tables, "no table from the failed migration may survive")

	var releaseYear sql.NullString
	err = db.QueryRow("SELECT release_year FROM album").Scan(&releaseYear)
	require.NoError(t, err)
	assert.Equal(t, "1998", releaseYear.String)
}

func TestSortDateColumnTracksInputs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertAlbum(ctx, AlbumFields{Title: "Moon Safari"})
	require.NoError(t, err)

	cases := []struct {
		date string
		year int
		want sql.NullString
	}{
		{"", 0, sql.NullString{}},
		{"", 1998, sql.NullString{String: "1998-01-01", Valid: true}},
		{"1998-01-16", 1998, sql.NullString{String: "1998-01-16", Valid: true}},
		{"not a date", 0, sql.NullString{}},
	}

	for _, tc := range cases {
		_, err := s.UpsertAlbum(ctx, AlbumFields{Title: "Moon Safari", ReleaseDate: tc.date, ReleaseYear: tc.year})
		require.NoError(t, err)

		album, err := s.GetAlbumByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, album.SortDate, "date=%q year=%d", tc.date, tc.year)

		// The column and the pure function agree
		want := SortDate(album.ReleaseDate.String, int(album.ReleaseYear.Int64))
		assert.Equal(t, want, album.SortDate.String)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO artist (name, name_sortable) VALUES ('Air', 'Air')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM artist"))
}

func TestTransactionHonoursCancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.UpsertArtist(ctx, "Air", "")
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM artist"))
}

func TestSQLiteVersion(t *testing.T) {
	assert.NotEmpty(t, SQLiteVersion())
}
