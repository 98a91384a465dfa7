package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
)

// TrackMetadata is everything the scanner learned about one audio file.
// Zero values mean "absent".
type TrackMetadata struct {
	Location string
	Duration int64 // seconds

	Title               string
	TitleSortable       string
	Artist              string
	ArtistSortable      string
	AlbumArtist         string
	AlbumArtistSortable string
	Album               string
	AlbumSortable       string
	Genre               string

	TrackNumber    int
	TrackTotal     int
	DiscNumber     int
	DiscTotal      int
	VinylNumbering bool

	Date          string
	Year          int
	Label         string
	CatalogNumber string
	ISRC          string
	MBIDAlbum     string

	// Processed cover art; only set on the track that carries it for the album
	Image []byte
	Thumb []byte
}

// Folder returns the directory containing the file
func (m *TrackMetadata) Folder() string {
	return filepath.Dir(m.Location)
}

// CarriesAlbum reports whether this track speaks for its album: the first
// track of the first (or only) disc. Only that track rewrites the album's
// date, label, catalog number, ISRC and art once the album exists.
func (m *TrackMetadata) CarriesAlbum() bool {
	return strings.TrimSpace(m.Album) != "" && m.TrackNumber == 1 && m.DiscNumber <= 1
}

// IngestResult holds the ids touched by one ingestion
type IngestResult struct {
	ArtistID int64 // 0 when no artist tag was present
	AlbumID  int64 // 0 when the track is detached
	Track    TrackResult
}

// Ingest writes one scanned file: artist, then album, then track, all in a
// single transaction. A shadowed track or a failed cascade leaves the store
// untouched.
func (s *Store) Ingest(ctx context.Context, m *TrackMetadata) (IngestResult, error) {
	var res IngestResult
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = ingestTx(ctx, tx, m)
		return err
	})
	return res, err
}

func ingestTx(ctx context.Context, tx *sql.Tx, m *TrackMetadata) (IngestResult, error) {
	var res IngestResult

	var albumID sql.NullInt64
	if strings.TrimSpace(m.Album) != "" {
		// Artists only exist through albums, so a detached track creates none
		artistName, artistSortable := m.AlbumArtist, m.AlbumArtistSortable
		if strings.TrimSpace(artistName) == "" {
			artistName, artistSortable = m.Artist, m.ArtistSortable
		}

		var artistID sql.NullInt64
		if strings.TrimSpace(artistName) != "" {
			id, err := upsertArtistTx(ctx, tx, artistName, artistSortable)
			if err != nil {
				return res, err
			}
			res.ArtistID = id
			artistID = sql.NullInt64{Int64: id, Valid: true}
		}

		id, err := writeAlbumTx(ctx, tx, AlbumFields{
			Title:          m.Album,
			TitleSortable:  m.AlbumSortable,
			ArtistID:       artistID,
			ReleaseDate:    m.Date,
			ReleaseYear:    m.Year,
			Label:          m.Label,
			CatalogNumber:  m.CatalogNumber,
			ISRC:           m.ISRC,
			MBID:           m.MBIDAlbum,
			VinylNumbering: m.VinylNumbering,
			Image:          m.Image,
			Thumb:          m.Thumb,
		}, m.CarriesAlbum())
		if err != nil {
			return res, err
		}
		res.AlbumID = id
		albumID = sql.NullInt64{Int64: id, Valid: true}
	}

	track, err := upsertTrackTx(ctx, tx, TrackFields{
		Title:         m.Title,
		TitleSortable: m.TitleSortable,
		AlbumID:       albumID,
		TrackNumber:   positive(m.TrackNumber),
		DiscNumber:    positive(m.DiscNumber),
		Duration:      m.Duration,
		Location:      m.Location,
		Genre:         m.Genre,
		ArtistNames:   m.Artist,
		Folder:        m.Folder(),
	})
	if err != nil {
		return res, err
	}
	res.Track = track

	return res, nil
}

func positive(n int) sql.NullInt64 {
	if n <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
