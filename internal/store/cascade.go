package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franz/music-index/internal/util"
)

// noDisc stands in for a missing disc number in album_path
const noDisc = -1

// priorAlbum is a track's album membership captured before it changes
type priorAlbum struct {
	AlbumID int64
	Folder  string
	Disc    sql.NullInt64
}

func (p priorAlbum) discKey() int64 {
	if p.Disc.Valid {
		return p.Disc.Int64
	}
	return noDisc
}

// CascadeResult counts rows removed by one reconciliation
type CascadeResult struct {
	PathsRemoved   int64
	AlbumsRemoved  int64
	ArtistsRemoved int64
}

// Empty reports whether nothing was removed
func (r CascadeResult) Empty() bool {
	return r.PathsRemoved == 0 && r.AlbumsRemoved == 0 && r.ArtistsRemoved == 0
}

// reconcileAlbumChange removes what a track leaving prior.AlbumID may have
// orphaned: the folder/disc mapping, then the album, then artists with no
// albums. It must run inside the transaction that moved the track.
func reconcileAlbumChange(ctx context.Context, tx *sql.Tx, prior priorAlbum) (CascadeResult, error) {
	var res CascadeResult
	disc := prior.discKey()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM album_path
		WHERE album_id = ? AND path = ? AND disc_num = ?
		  AND NOT EXISTS (
		    SELECT 1 FROM track
		    WHERE track.folder = ? AND COALESCE(track.disc_number, -1) = ? AND track.album_id = ?
		  )
	`, prior.AlbumID, prior.Folder, disc, prior.Folder, disc, prior.AlbumID)
	if err != nil {
		return res, fmt.Errorf("%w: removing album path: %w", util.ErrConsistency, err)
	}
	res.PathsRemoved, _ = result.RowsAffected()

	result, err = tx.ExecContext(ctx, `
		DELETE FROM album
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM track WHERE track.album_id = ?)
	`, prior.AlbumID, prior.AlbumID)
	if err != nil {
		return res, fmt.Errorf("%w: removing album %d: %w", util.ErrConsistency, prior.AlbumID, err)
	}
	res.AlbumsRemoved, _ = result.RowsAffected()

	result, err = tx.ExecContext(ctx, `
		DELETE FROM artist
		WHERE NOT EXISTS (SELECT 1 FROM album WHERE album.artist_id = artist.id)
	`)
	if err != nil {
		return res, fmt.Errorf("%w: removing orphaned artists: %w", util.ErrConsistency, err)
	}
	res.ArtistsRemoved, _ = result.RowsAffected()

	if !res.Empty() {
		util.DebugLog("Cascade for album %d: %d path(s), %d album(s), %d artist(s) removed",
			prior.AlbumID, res.PathsRemoved, res.AlbumsRemoved, res.ArtistsRemoved)
	}

	return res, nil
}
