package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franz/music-index/internal/util"
)

// migrate brings any historical store to the current schema. State is read
// from the columns themselves, so each step is safe to run again.
// All steps share one transaction.
func (s *Store) migrate(ctx context.Context) error {
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaBase); err != nil {
			return fmt.Errorf("base schema: %w", err)
		}
		if err := migrateDatePrecision(ctx, tx); err != nil {
			return fmt.Errorf("date precision: %w", err)
		}
		if err := migrateYearOnlyDates(ctx, tx); err != nil {
			return fmt.Errorf("year-only dates: %w", err)
		}
		if _, err := tx.ExecContext(ctx, schemaReleaseDateIndex); err != nil {
			return fmt.Errorf("release date index: %w", err)
		}
		if err := migrateSortDate(ctx, tx); err != nil {
			return fmt.Errorf("sort date: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrMigration, err)
	}
	return nil
}

// hasColumn reports whether table has the named column. table_xinfo is used
// because table_info hides generated columns.
func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_xinfo(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}

	for rows.Next() {
		vals := make([]any, len(cols))
		var name string
		for i := range vals {
			if cols[i] == "name" {
				vals[i] = &name
			} else {
				vals[i] = new(any)
			}
		}
		if err := rows.Scan(vals...); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// migrateDatePrecision adds album.date_precision and canonicalizes every
// stored release_date. Legacy values carrying only a year move to release_year.
func migrateDatePrecision(ctx context.Context, tx *sql.Tx) error {
	ok, err := hasColumn(ctx, tx, "album", "date_precision")
	if err != nil || ok {
		return err
	}

	if _, err := tx.ExecContext(ctx, "ALTER TABLE album ADD COLUMN date_precision INTEGER"); err != nil {
		return err
	}

	type legacyDate struct {
		id   int64
		raw  string
		year sql.NullInt64
	}

	rows, err := tx.QueryContext(ctx, "SELECT id, release_date, release_year FROM album WHERE release_date IS NOT NULL")
	if err != nil {
		return err
	}
	var pending []legacyDate
	for rows.Next() {
		var d legacyDate
		if err := rows.Scan(&d.id, &d.raw, &d.year); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, d)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return err
	}

	for _, d := range pending {
		if t, ok := ParseExactDate(d.raw); ok {
			_, err = tx.ExecContext(ctx,
				"UPDATE album SET release_date = ?, date_precision = ? WHERE id = ?",
				t.Format(dateLayout), PrecisionDay, d.id)
		} else if y, ok := ParseYearOnly(d.raw); ok && !d.year.Valid {
			_, err = tx.ExecContext(ctx,
				"UPDATE album SET release_date = NULL, release_year = ? WHERE id = ?", y, d.id)
		} else {
			_, err = tx.ExecContext(ctx, "UPDATE album SET release_date = NULL WHERE id = ?", d.id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// migrateYearOnlyDates fills release_date for albums that only know their year.
func migrateYearOnlyDates(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE album
		SET release_date = printf('%04d-01-01', release_year), date_precision = ?
		WHERE release_date IS NULL AND release_year IS NOT NULL
	`, PrecisionYear)
	return err
}

func migrateSortDate(ctx context.Context, tx *sql.Tx) error {
	ok, err := hasColumn(ctx, tx, "album", "sort_date")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := tx.ExecContext(ctx, schemaSortDate); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, schemaSortDateIndex)
	return err
}
