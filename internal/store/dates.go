package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DatePrecision records how much of an album's release date is known
type DatePrecision int

const (
	PrecisionYear DatePrecision = 0 // only the year is known; date is YYYY-01-01
	PrecisionDay  DatePrecision = 1 // exact day
)

const dateLayout = "2006-01-02"

var exactDateLayouts = []string{
	dateLayout,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
}

var yearOnlyLayouts = []string{
	"2006",
	"2006-01",
	"2006/01",
}

// ReleaseDate holds the stored date columns derived from scan input
type ReleaseDate struct {
	Date      sql.NullString // canonical YYYY-MM-DD
	Year      sql.NullInt64
	Precision sql.NullInt64
}

// SortDate derives the recency sort key: the release date when present,
// otherwise January 1st of the release year, otherwise "".
// Matches the album.sort_date generated column.
func SortDate(releaseDate string, releaseYear int) string {
	if releaseDate != "" {
		return releaseDate
	}
	if releaseYear > 0 {
		return fmt.Sprintf("%04d-01-01", releaseYear)
	}
	return ""
}

// ParseExactDate parses a textual date carrying day precision.
func ParseExactDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range exactDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseYearOnly extracts the year from inputs that carry no day ("1998", "1998-03").
func ParseYearOnly(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range yearOnlyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// ResolveReleaseDate turns a raw date tag and an optional year into stored columns.
// Malformed dates are treated as absent; the year then takes over.
func ResolveReleaseDate(raw string, year int) ReleaseDate {
	if t, ok := ParseExactDate(raw); ok {
		return ReleaseDate{
			Date:      sql.NullString{String: t.Format(dateLayout), Valid: true},
			Year:      sql.NullInt64{Int64: int64(t.Year()), Valid: true},
			Precision: sql.NullInt64{Int64: int64(PrecisionDay), Valid: true},
		}
	}

	if y, ok := ParseYearOnly(raw); ok && year <= 0 {
		year = y
	}

	if year > 0 && year <= 9999 {
		return ReleaseDate{
			Date:      sql.NullString{String: fmt.Sprintf("%04d-01-01", year), Valid: true},
			Year:      sql.NullInt64{Int64: int64(year), Valid: true},
			Precision: sql.NullInt64{Int64: int64(PrecisionYear), Valid: true},
		}
	}

	return ReleaseDate{}
}
