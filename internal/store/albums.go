package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/franz/music-index/internal/util"
)

// NoMBID is stored when an album carries no MusicBrainz release id
const NoMBID = "none"

// AlbumFields is the scanner's view of an album
type AlbumFields struct {
	Title          string
	TitleSortable  string
	ArtistID       sql.NullInt64
	ReleaseDate    string // raw tag value; canonicalized on write
	ReleaseYear    int
	Label          string
	CatalogNumber  string
	ISRC           string
	MBID           string
	VinylNumbering bool
	Image          []byte // nil keeps the stored image
	Thumb          []byte
}

// UpsertAlbum inserts or updates the album identified by (title, artist, mbid)
// and returns its id. On update every field takes the incoming value, except
// vinyl_numbering which never goes from true back to false.
//
// An album written here has no tracks until UpsertTrack attaches one. If that
// call fails (ErrShadowedTrack among others) the album stays empty; Ingest
// writes album and track in one transaction and should be preferred.
func (s *Store) UpsertAlbum(ctx context.Context, f AlbumFields) (int64, error) {
	var id int64
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = upsertAlbumTx(ctx, tx, f)
		return err
	})
	return id, err
}

func upsertAlbumTx(ctx context.Context, tx *sql.Tx, f AlbumFields) (int64, error) {
	return writeAlbumTx(ctx, tx, f, true)
}

// writeAlbumTx inserts the album when it is new. An existing album takes the
// incoming fields only when overwrite is set; vinyl_numbering is OR-ed in
// either way.
func writeAlbumTx(ctx context.Context, tx *sql.Tx, f AlbumFields, overwrite bool) (int64, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return 0, fmt.Errorf("%w: album title is empty", util.ErrInvalidInput)
	}
	if f.TitleSortable == "" {
		f.TitleSortable = f.Title
	}
	if f.MBID == "" {
		f.MBID = NoMBID
	}

	date := ResolveReleaseDate(f.ReleaseDate, f.ReleaseYear)

	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM album WHERE title = ? AND artist_id IS ? AND mbid = ?",
		f.Title, f.ArtistID, f.MBID,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		result, err := tx.ExecContext(ctx, `
			INSERT INTO album (title, title_sortable, artist_id, image, thumb,
			                   release_date, release_year, date_precision,
			                   label, catalog_number, isrc, mbid, vinyl_numbering)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.Title, f.TitleSortable, f.ArtistID, nullBytes(f.Image), nullBytes(f.Thumb),
			date.Date, date.Year, date.Precision,
			nullString(f.Label), nullString(f.CatalogNumber), nullString(f.ISRC),
			f.MBID, f.VinylNumbering)
		if err != nil {
			return 0, fmt.Errorf("failed to insert album: %w", err)
		}
		return result.LastInsertId()

	case err != nil:
		return 0, fmt.Errorf("failed to look up album: %w", err)
	}

	if !overwrite {
		if _, err := tx.ExecContext(ctx,
			"UPDATE album SET vinyl_numbering = (vinyl_numbering OR ?) WHERE id = ?",
			f.VinylNumbering, id); err != nil {
			return 0, fmt.Errorf("failed to update album: %w", err)
		}
		return id, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE album SET
			title_sortable = ?,
			image = COALESCE(?, image),
			thumb = COALESCE(?, thumb),
			release_date = ?,
			release_year = ?,
			date_precision = ?,
			label = ?,
			catalog_number = ?,
			isrc = ?,
			vinyl_numbering = (vinyl_numbering OR ?)
		WHERE id = ?
	`, f.TitleSortable, nullBytes(f.Image), nullBytes(f.Thumb),
		date.Date, date.Year, date.Precision,
		nullString(f.Label), nullString(f.CatalogNumber), nullString(f.ISRC),
		f.VinylNumbering, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update album: %w", err)
	}

	return id, nil
}

// GetAlbumByID retrieves an album by id, nil when absent
func (s *Store) GetAlbumByID(ctx context.Context, id int64) (*Album, error) {
	a := &Album{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, title_sortable, artist_id, release_date, release_year,
		       date_precision, sort_date, label, catalog_number, isrc, mbid, vinyl_numbering
		FROM album WHERE id = ?
	`, id).Scan(
		&a.ID, &a.Title, &a.TitleSortable, &a.ArtistID, &a.ReleaseDate, &a.ReleaseYear,
		&a.DatePrecision, &a.SortDate, &a.Label, &a.CatalogNumber, &a.ISRC, &a.MBID, &a.VinylNumbering,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullBytes binds an empty image as NULL rather than a zero-length blob
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
