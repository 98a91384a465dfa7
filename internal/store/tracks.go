package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/music-index/internal/util"
)

// TrackFields is the scanner's view of a track
type TrackFields struct {
	Title         string
	TitleSortable string
	AlbumID       sql.NullInt64 // invalid means detached
	TrackNumber   sql.NullInt64
	DiscNumber    sql.NullInt64
	Duration      int64 // seconds
	Location      string
	Genre         string
	ArtistNames   string
	Folder        string // defaults to the directory of Location
}

// TrackResult describes what an upsert did to a track
type TrackResult struct {
	TrackID int64
	Created bool
	Cascade CascadeResult
}

// UpsertTrack inserts or updates the track at f.Location. Moving the track
// away from its previous album (or disc) reconciles what it left behind in
// the same transaction.
func (s *Store) UpsertTrack(ctx context.Context, f TrackFields) (TrackResult, error) {
	var res TrackResult
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = upsertTrackTx(ctx, tx, f)
		return err
	})
	return res, err
}

func upsertTrackTx(ctx context.Context, tx *sql.Tx, f TrackFields) (TrackResult, error) {
	var res TrackResult

	if f.Location == "" {
		return res, fmt.Errorf("%w: track location is empty", util.ErrInvalidInput)
	}
	if f.Folder == "" {
		f.Folder = filepath.Dir(f.Location)
	}
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		f.Title = filepath.Base(f.Location)
	}
	if f.TitleSortable == "" {
		f.TitleSortable = f.Title
	}

	prior, existed, err := lookupTrackAlbum(ctx, tx, f.Location)
	if err != nil {
		return res, err
	}

	if f.AlbumID.Valid {
		if err := ensureAlbumPath(ctx, tx, f.AlbumID.Int64, f.Folder, f.DiscNumber); err != nil {
			return res, err
		}
	}

	if existed {
		res.TrackID = prior.trackID
		_, err = tx.ExecContext(ctx, `
			UPDATE track SET
				title = ?, title_sortable = ?, album_id = ?, track_number = ?,
				disc_number = ?, duration = ?, genre = ?, artist_names = ?, folder = ?
			WHERE id = ?
		`, f.Title, f.TitleSortable, f.AlbumID, f.TrackNumber,
			f.DiscNumber, f.Duration, nullString(f.Genre), nullString(f.ArtistNames), f.Folder,
			prior.trackID)
		if err != nil {
			return res, fmt.Errorf("failed to update track: %w", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO track (title, title_sortable, album_id, track_number, disc_number,
			                   duration, location, genre, artist_names, folder)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.Title, f.TitleSortable, f.AlbumID, f.TrackNumber, f.DiscNumber,
			f.Duration, f.Location, nullString(f.Genre), nullString(f.ArtistNames), f.Folder)
		if err != nil {
			return res, fmt.Errorf("failed to insert track: %w", err)
		}
		res.TrackID, err = result.LastInsertId()
		if err != nil {
			return res, err
		}
		res.Created = true
	}

	if existed && prior.album.AlbumID != 0 && prior.movedTo(f) {
		res.Cascade, err = reconcileAlbumChange(ctx, tx, prior.album)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// DetachTrack clears a track's album reference and reconciles the album it left.
func (s *Store) DetachTrack(ctx context.Context, trackID int64) (CascadeResult, error) {
	var res CascadeResult
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		prior, err := trackAlbumByID(ctx, tx, trackID)
		if err != nil {
			return err
		}
		if prior.AlbumID == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, "UPDATE track SET album_id = NULL WHERE id = ?", trackID); err != nil {
			return fmt.Errorf("failed to detach track: %w", err)
		}

		res, err = reconcileAlbumChange(ctx, tx, prior)
		return err
	})
	return res, err
}

// DeleteTrack removes the track at location along with its scan record.
// Its album and artist go too when nothing else holds them.
func (s *Store) DeleteTrack(ctx context.Context, location string) (CascadeResult, error) {
	var res CascadeResult
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = deleteTrackTx(ctx, tx, location)
		return err
	})
	return res, err
}

func deleteTrackTx(ctx context.Context, tx *sql.Tx, location string) (CascadeResult, error) {
	var res CascadeResult

	prior, existed, err := lookupTrackAlbum(ctx, tx, location)
	if err != nil {
		return res, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM scan_record WHERE location = ?", location); err != nil {
		return res, fmt.Errorf("failed to delete scan record: %w", err)
	}
	if !existed {
		return res, nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM track WHERE id = ?", prior.trackID); err != nil {
		return res, fmt.Errorf("failed to delete track: %w", err)
	}

	if prior.album.AlbumID != 0 {
		return reconcileAlbumChange(ctx, tx, prior.album)
	}
	return res, nil
}

// GetTrackByLocation retrieves a track by file path, nil when absent
func (s *Store) GetTrackByLocation(ctx context.Context, location string) (*Track, error) {
	t := &Track{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, title_sortable, album_id, track_number, disc_number,
		       duration, location, genre, artist_names, folder
		FROM track WHERE location = ?
	`, location).Scan(
		&t.ID, &t.Title, &t.TitleSortable, &t.AlbumID, &t.TrackNumber, &t.DiscNumber,
		&t.Duration, &t.Location, &t.Genre, &t.ArtistNames, &t.Folder,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return t, nil
}

type trackState struct {
	trackID int64
	album   priorAlbum
}

// movedTo reports whether f takes the track out of its current (album, disc)
func (t trackState) movedTo(f TrackFields) bool {
	if !f.AlbumID.Valid || f.AlbumID.Int64 != t.album.AlbumID {
		return true
	}
	if f.Folder != t.album.Folder {
		return true
	}
	return (priorAlbum{Disc: f.DiscNumber}).discKey() != t.album.discKey()
}

func lookupTrackAlbum(ctx context.Context, tx *sql.Tx, location string) (trackState, bool, error) {
	var st trackState
	var albumID sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT id, album_id, folder, disc_number FROM track WHERE location = ?", location,
	).Scan(&st.trackID, &albumID, &st.album.Folder, &st.album.Disc)

	if err == sql.ErrNoRows {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("failed to look up track: %w", err)
	}
	st.album.AlbumID = albumID.Int64
	return st, true, nil
}

func trackAlbumByID(ctx context.Context, tx *sql.Tx, trackID int64) (priorAlbum, error) {
	var p priorAlbum
	var albumID sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT album_id, folder, disc_number FROM track WHERE id = ?", trackID,
	).Scan(&albumID, &p.Folder, &p.Disc)

	if err == sql.ErrNoRows {
		return p, fmt.Errorf("%w: track %d", util.ErrNotFound, trackID)
	}
	if err != nil {
		return p, fmt.Errorf("failed to look up track: %w", err)
	}
	p.AlbumID = albumID.Int64
	return p, nil
}
