package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
)

// RecordScan remembers the modification time a file had when it was last ingested
func (s *Store) RecordScan(ctx context.Context, location string, mtimeUnix int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_record (location, mtime_unix)
		VALUES (?, ?)
		ON CONFLICT(location) DO UPDATE SET
			mtime_unix = excluded.mtime_unix,
			scanned_at = CURRENT_TIMESTAMP
	`, location, mtimeUnix)

	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}

// ScanMtimes returns the recorded modification time for every scanned file
func (s *Store) ScanMtimes(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT location, mtime_unix FROM scan_record")
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer rows.Close()

	mtimes := make(map[string]int64)
	for rows.Next() {
		var location string
		var mtime int64
		if err := rows.Scan(&location, &mtime); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		mtimes[location] = mtime
	}
	return mtimes, rows.Err()
}

// ForgetScanRecords drops every scan record so the next scan re-reads all files
func (s *Store) ForgetScanRecords(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM scan_record"); err != nil {
		return fmt.Errorf("failed to clear scan records: %w", err)
	}
	return nil
}

// ScanRoots returns the library roots used by the previous scan
func (s *Store) ScanRoots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM scan_root ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query scan roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan root: %w", err)
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

// SetScanRoots replaces the stored library roots
func (s *Store) SetScanRoots(ctx context.Context, roots []string) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM scan_root"); err != nil {
			return fmt.Errorf("failed to clear scan roots: %w", err)
		}
		for _, root := range roots {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO scan_root (path) VALUES (?)", filepath.Clean(root)); err != nil {
				return fmt.Errorf("failed to insert scan root: %w", err)
			}
		}
		return nil
	})
}

// TrackLocations returns every indexed file path, optionally limited to those under root
func (s *Store) TrackLocations(ctx context.Context, root string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT location FROM track ORDER BY location")
	if err != nil {
		return nil, fmt.Errorf("failed to query track locations: %w", err)
	}
	defer rows.Close()

	var prefix string
	if root != "" {
		prefix = strings.TrimSuffix(filepath.Clean(root), string(filepath.Separator)) + string(filepath.Separator)
	}

	var locations []string
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return nil, fmt.Errorf("failed to scan track location: %w", err)
		}
		if strings.HasPrefix(location, prefix) {
			locations = append(locations, location)
		}
	}
	return locations, rows.Err()
}
