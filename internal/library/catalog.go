// Package library serves the read side of the index: every listing the
// browser needs, each with a fixed ORDER BY.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/franz/music-index/internal/store"
	"github.com/franz/music-index/internal/util"
)

// Catalog runs read-only queries against the store's pool. Reads use
// autocommit statements so a running scan never blocks them.
type Catalog struct {
	db *sqlx.DB
}

// AlbumRef is an album id with its sortable title
type AlbumRef struct {
	ID            int64  `db:"id"`
	TitleSortable string `db:"title_sortable"`
}

// ArtistRef is an artist id with its sortable name
type ArtistRef struct {
	ID           int64  `db:"id"`
	NameSortable string `db:"name_sortable"`
}

// ArtistCounts is an artist together with how much of the library it owns
type ArtistCounts struct {
	store.Artist
	AlbumCount int64 `db:"album_count"`
	TrackCount int64 `db:"track_count"`
}

// Counts summarizes the library size
type Counts struct {
	Artists int64
	Albums  int64
	Tracks  int64
}

// ArtKind selects which stored album image to return
type ArtKind int

const (
	ArtFull ArtKind = iota
	ArtThumb
)

const trackColumns = `t.id, t.title, t.title_sortable, t.album_id, t.track_number,
	t.disc_number, t.duration, t.location, t.genre, t.artist_names, t.folder`

const albumColumns = `al.id, al.title, al.title_sortable, al.artist_id, al.release_date,
	al.release_year, al.date_precision, al.sort_date, al.label, al.catalog_number,
	al.isrc, al.mbid, al.vinyl_numbering`

// New wraps the store's connection pool
func New(db *sql.DB) *Catalog {
	return &Catalog{db: sqlx.NewDb(db, "sqlite")}
}

// ListAlbums returns every album in the requested order
func (c *Catalog) ListAlbums(ctx context.Context, by AlbumSort) ([]AlbumRef, error) {
	order, ok := albumOrder[by]
	if !ok {
		return nil, fmt.Errorf("%w: album sort %d", util.ErrInvalidInput, by)
	}

	query := `
		SELECT al.id, al.title_sortable
		FROM album al
		LEFT JOIN artist ar ON ar.id = al.artist_id
		ORDER BY ` + order
	if by == AlbumTrackCountAsc || by == AlbumTrackCountDesc {
		query = `
			SELECT al.id, al.title_sortable
			FROM album al
			LEFT JOIN track t ON t.album_id = al.id
			GROUP BY al.id
			ORDER BY ` + order
	}

	albums := []AlbumRef{}
	if err := c.db.SelectContext(ctx, &albums, query); err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// ListTracks returns every track in the requested order
func (c *Catalog) ListTracks(ctx context.Context, by TrackSort) ([]store.Track, error) {
	order, ok := trackOrder[by]
	if !ok {
		return nil, fmt.Errorf("%w: track sort %d", util.ErrInvalidInput, by)
	}

	tracks := []store.Track{}
	err := c.db.SelectContext(ctx, &tracks, `
		SELECT `+trackColumns+`
		FROM track t
		LEFT JOIN album al ON al.id = t.album_id
		LEFT JOIN artist ar ON ar.id = al.artist_id
		ORDER BY `+order)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

// ListArtists returns every artist in the requested order. Count orders use
// outer joins so artists without albums or tracks still appear.
func (c *Catalog) ListArtists(ctx context.Context, by ArtistSort) ([]ArtistRef, error) {
	order, ok := artistOrder[by]
	if !ok {
		return nil, fmt.Errorf("%w: artist sort %d", util.ErrInvalidInput, by)
	}

	var query string
	switch by {
	case ArtistAlbumsAsc, ArtistAlbumsDesc:
		query = `
			SELECT ar.id, ar.name_sortable
			FROM artist ar
			LEFT JOIN album al ON al.artist_id = ar.id
			GROUP BY ar.id
			ORDER BY ` + order
	case ArtistTracksAsc, ArtistTracksDesc:
		query = `
			SELECT ar.id, ar.name_sortable
			FROM artist ar
			LEFT JOIN album al ON al.artist_id = ar.id
			LEFT JOIN track t ON t.album_id = al.id
			GROUP BY ar.id
			ORDER BY ` + order
	default:
		query = `SELECT ar.id, ar.name_sortable FROM artist ar ORDER BY ` + order
	}

	artists := []ArtistRef{}
	if err := c.db.SelectContext(ctx, &artists, query); err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	return artists, nil
}

// ListAlbumsByArtist returns an artist's albums, oldest first
func (c *Catalog) ListAlbumsByArtist(ctx context.Context, artistID int64) ([]AlbumRef, error) {
	albums := []AlbumRef{}
	err := c.db.SelectContext(ctx, &albums, `
		SELECT al.id, al.title_sortable
		FROM album al
		WHERE al.artist_id = ?
		ORDER BY al.sort_date IS NULL, al.sort_date, al.title_sortable COLLATE NOCASE, al.id`,
		artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums for artist %d: %w", artistID, err)
	}
	return albums, nil
}

// GetArtistWithCounts returns the artist with its album and track counts,
// or nil when the id is unknown
func (c *Catalog) GetArtistWithCounts(ctx context.Context, artistID int64) (*ArtistCounts, error) {
	var a ArtistCounts
	err := c.db.GetContext(ctx, &a, `
		SELECT ar.id, ar.name, ar.name_sortable,
			COUNT(DISTINCT al.id) AS album_count,
			COUNT(t.id) AS track_count
		FROM artist ar
		LEFT JOIN album al ON al.artist_id = ar.id
		LEFT JOIN track t ON t.album_id = al.id
		WHERE ar.id = ?
		GROUP BY ar.id`, artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist %d: %w", artistID, err)
	}
	return &a, nil
}

// ListTracksInAlbum returns an album's tracks in disc then track order
func (c *Catalog) ListTracksInAlbum(ctx context.Context, albumID int64) ([]store.Track, error) {
	tracks := []store.Track{}
	err := c.db.SelectContext(ctx, &tracks, `
		SELECT `+trackColumns+`
		FROM track t
		WHERE t.album_id = ?
		ORDER BY t.disc_number, t.track_number, t.id`, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks for album %d: %w", albumID, err)
	}
	return tracks, nil
}

// ListTracksByArtist returns all tracks on an artist's albums, album by album
func (c *Catalog) ListTracksByArtist(ctx context.Context, artistID int64) ([]store.Track, error) {
	tracks := []store.Track{}
	err := c.db.SelectContext(ctx, &tracks, `
		SELECT `+trackColumns+`
		FROM track t
		JOIN album al ON al.id = t.album_id
		WHERE al.artist_id = ?
		ORDER BY al.sort_date IS NULL, al.sort_date, al.title_sortable COLLATE NOCASE, t.disc_number, t.track_number, t.id`,
		artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks for artist %d: %w", artistID, err)
	}
	return tracks, nil
}

// GetAlbum returns the album or nil when the id is unknown
func (c *Catalog) GetAlbum(ctx context.Context, albumID int64) (*store.Album, error) {
	var a store.Album
	err := c.db.GetContext(ctx, &a, `SELECT `+albumColumns+` FROM album al WHERE al.id = ?`, albumID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album %d: %w", albumID, err)
	}
	return &a, nil
}

// GetTrack returns the track or nil when the id is unknown
func (c *Catalog) GetTrack(ctx context.Context, trackID int64) (*store.Track, error) {
	var t store.Track
	err := c.db.GetContext(ctx, &t, `SELECT `+trackColumns+` FROM track t WHERE t.id = ?`, trackID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track %d: %w", trackID, err)
	}
	return &t, nil
}

// GetArtistName returns the display name, or "" when the id is unknown
func (c *Catalog) GetArtistName(ctx context.Context, artistID int64) (string, error) {
	var name string
	err := c.db.GetContext(ctx, &name, `SELECT name FROM artist WHERE id = ?`, artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get artist %d: %w", artistID, err)
	}
	return name, nil
}

// AlbumArt returns the stored image bytes, nil when the album or the image is absent
func (c *Catalog) AlbumArt(ctx context.Context, albumID int64, kind ArtKind) ([]byte, error) {
	column := "image"
	if kind == ArtThumb {
		column = "thumb"
	}

	var data []byte
	err := c.db.QueryRowxContext(ctx, `SELECT `+column+` FROM album WHERE id = ?`, albumID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get art for album %d: %w", albumID, err)
	}
	return data, nil
}

// Counts returns the number of artists, albums and tracks
func (c *Catalog) Counts(ctx context.Context) (Counts, error) {
	var n Counts
	err := c.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM artist),
			(SELECT COUNT(*) FROM album),
			(SELECT COUNT(*) FROM track)`).Scan(&n.Artists, &n.Albums, &n.Tracks)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count library: %w", err)
	}
	return n, nil
}
