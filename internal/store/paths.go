package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franz/music-index/internal/util"
)

// ensureAlbumPath claims (album, disc) for folder. The first folder to supply
// a disc of an album owns it; a different folder is a shadow copy.
func ensureAlbumPath(ctx context.Context, tx *sql.Tx, albumID int64, folder string, disc sql.NullInt64) error {
	discNum := int64(noDisc)
	if disc.Valid {
		discNum = disc.Int64
	}

	var owner string
	err := tx.QueryRowContext(ctx,
		"SELECT path FROM album_path WHERE album_id = ? AND disc_num = ?", albumID, discNum,
	).Scan(&owner)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO album_path (album_id, path, disc_num) VALUES (?, ?, ?)",
			albumID, folder, discNum)
		if err != nil {
			return fmt.Errorf("failed to insert album path: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up album path: %w", err)
	case owner != folder:
		return fmt.Errorf("%w: album %d disc %d is supplied by %s", util.ErrShadowedTrack, albumID, discNum, owner)
	}
	return nil
}

// GetAlbumPaths lists the folders supplying an album, ordered by disc
func (s *Store) GetAlbumPaths(ctx context.Context, albumID int64) ([]AlbumPath, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT album_id, path, disc_num FROM album_path WHERE album_id = ? ORDER BY disc_num",
		albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query album paths: %w", err)
	}
	defer rows.Close()

	var paths []AlbumPath
	for rows.Next() {
		var p AlbumPath
		if err := rows.Scan(&p.AlbumID, &p.Path, &p.DiscNum); err != nil {
			return nil, fmt.Errorf("failed to scan album path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
