package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/franz/music-index/internal/util"
)

// UpsertArtist returns the id of the artist with the given name, creating it if needed.
// An empty sortable name falls back to name.
func (s *Store) UpsertArtist(ctx context.Context, name, nameSortable string) (int64, error) {
	var id int64
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = upsertArtistTx(ctx, tx, name, nameSortable)
		return err
	})
	return id, err
}

func upsertArtistTx(ctx context.Context, tx *sql.Tx, name, nameSortable string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: artist name is empty", util.ErrInvalidInput)
	}
	if nameSortable == "" {
		nameSortable = name
	}

	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM artist WHERE name = ?", name).Scan(&id)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE artist SET name_sortable = ? WHERE id = ? AND name_sortable != ?",
			nameSortable, id, nameSortable); err != nil {
			return 0, fmt.Errorf("failed to update artist: %w", err)
		}
		return id, nil
	case err != sql.ErrNoRows:
		return 0, fmt.Errorf("failed to look up artist: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO artist (name, name_sortable) VALUES (?, ?)", name, nameSortable)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artist: %w", err)
	}
	return result.LastInsertId()
}

// GetArtistByName retrieves an artist by exact name
func (s *Store) GetArtistByName(ctx context.Context, name string) (*Artist, error) {
	a := &Artist{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, name_sortable FROM artist WHERE name = ?", name,
	).Scan(&a.ID, &a.Name, &a.NameSortable)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return a, nil
}
