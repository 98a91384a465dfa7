package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/franz/music-index/internal/util"
)

// PlaylistEntry is one position in a playlist
type PlaylistEntry struct {
	ItemID   int64
	Position int64
	Track    Track
}

// CreatePlaylist creates an empty playlist and returns its id
func (s *Store) CreatePlaylist(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: playlist name is empty", util.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO playlist (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}
	return result.LastInsertId()
}

// GetPlaylistByName retrieves a playlist by name, nil when absent
func (s *Store) GetPlaylistByName(ctx context.Context, name string) (*Playlist, error) {
	p := &Playlist{}
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM playlist WHERE name = ?", name).Scan(&p.ID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return p, nil
}

// ListPlaylists returns all playlists ordered by name
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM playlist ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// AppendToPlaylist adds a track at the end of a playlist and returns the item id
func (s *Store) AppendToPlaylist(ctx context.Context, playlistID, trackID int64) (int64, error) {
	var itemID int64
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		for _, check := range []struct {
			table string
			id    int64
		}{{"playlist", playlistID}, {"track", trackID}} {
			var n int
			if err := tx.QueryRowContext(ctx,
				fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", check.table), check.id,
			).Scan(&n); err != nil {
				return fmt.Errorf("failed to look up %s: %w", check.table, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s %d", util.ErrNotFound, check.table, check.id)
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_item (playlist_id, track_id, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_item WHERE playlist_id = ?))
		`, playlistID, trackID, playlistID)
		if err != nil {
			return fmt.Errorf("failed to append to playlist: %w", err)
		}
		itemID, err = result.LastInsertId()
		return err
	})
	return itemID, err
}

// RemovePlaylistItem removes one entry and closes the gap it leaves
func (s *Store) RemovePlaylistItem(ctx context.Context, itemID int64) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		var playlistID, position int64
		err := tx.QueryRowContext(ctx,
			"SELECT playlist_id, position FROM playlist_item WHERE id = ?", itemID,
		).Scan(&playlistID, &position)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: playlist item %d", util.ErrNotFound, itemID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up playlist item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_item WHERE id = ?", itemID); err != nil {
			return fmt.Errorf("failed to remove playlist item: %w", err)
		}

		// Shift one row at a time in ascending order so UNIQUE(playlist_id, position) holds throughout
		rows, err := tx.QueryContext(ctx,
			"SELECT id FROM playlist_item WHERE playlist_id = ? AND position > ? ORDER BY position",
			playlistID, position)
		if err != nil {
			return fmt.Errorf("failed to query playlist items: %w", err)
		}
		var later []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			later = append(later, id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}

		for _, id := range later {
			if _, err := tx.ExecContext(ctx,
				"UPDATE playlist_item SET position = position - 1 WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to compact playlist: %w", err)
			}
		}
		return nil
	})
}

// ListPlaylistTracks returns a playlist's entries in order; empty for an unknown playlist
func (s *Store) ListPlaylistTracks(ctx context.Context, playlistID int64) ([]PlaylistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT playlist_item.id, playlist_item.position,
		       track.id, track.title, track.title_sortable, track.album_id, track.track_number,
		       track.disc_number, track.duration, track.location, track.genre,
		       track.artist_names, track.folder
		FROM playlist_item
		JOIN track ON track.id = playlist_item.track_id
		WHERE playlist_item.playlist_id = ?
		ORDER BY playlist_item.position
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	defer rows.Close()

	var entries []PlaylistEntry
	for rows.Next() {
		var e PlaylistEntry
		t := &e.Track
		if err := rows.Scan(&e.ItemID, &e.Position,
			&t.ID, &t.Title, &t.TitleSortable, &t.AlbumID, &t.TrackNumber,
			&t.DiscNumber, &t.Duration, &t.Location, &t.Genre,
			&t.ArtistNames, &t.Folder); err != nil {
			return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
