package store

import (
	"context"
	"fmt"
)

// Violation is one row breaking a library invariant
type Violation struct {
	Rule   string // short rule name, e.g. "empty-album"
	Table  string
	ID     int64
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %d: %s", v.Rule, v.Table, v.ID, v.Detail)
}

var invariantChecks = []struct {
	rule  string
	table string
	query string
}{
	{
		rule:  "missing-sort-date",
		table: "album",
		query: `SELECT id, title FROM album
		        WHERE (release_date IS NOT NULL OR release_year IS NOT NULL) AND sort_date IS NULL`,
	},
	{
		rule:  "empty-album",
		table: "album",
		query: `SELECT id, title FROM album
		        WHERE NOT EXISTS (SELECT 1 FROM track WHERE track.album_id = album.id)`,
	},
	{
		rule:  "empty-artist",
		table: "artist",
		query: `SELECT id, name FROM artist
		        WHERE NOT EXISTS (SELECT 1 FROM album WHERE album.artist_id = artist.id)`,
	},
	{
		rule:  "stale-album-path",
		table: "album_path",
		query: `SELECT album_id, path || ' disc ' || disc_num FROM album_path
		        WHERE NOT EXISTS (
		          SELECT 1 FROM track
		          WHERE track.album_id = album_path.album_id
		            AND track.folder = album_path.path
		            AND COALESCE(track.disc_number, -1) = album_path.disc_num
		        )`,
	},
}

// CheckInvariants reports every row that breaks the library's consistency
// rules. An empty result means the store is clean.
func (s *Store) CheckInvariants(ctx context.Context) ([]Violation, error) {
	var violations []Violation

	for _, check := range invariantChecks {
		rows, err := s.db.QueryContext(ctx, check.query)
		if err != nil {
			return nil, fmt.Errorf("invariant check %s failed: %w", check.rule, err)
		}

		for rows.Next() {
			v := Violation{Rule: check.rule, Table: check.table}
			if err := rows.Scan(&v.ID, &v.Detail); err != nil {
				rows.Close()
				return nil, fmt.Errorf("invariant check %s failed: %w", check.rule, err)
			}
			violations = append(violations, v)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("invariant check %s failed: %w", check.rule, err)
		}
	}

	return violations, nil
}
