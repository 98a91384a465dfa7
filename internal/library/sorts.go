package library

import (
	"fmt"
	"sort"
	"strings"

	"github.com/franz/music-index/internal/util"
)

// AlbumSort names one of the fixed album orderings
type AlbumSort int

const (
	AlbumTitleAsc AlbumSort = iota
	AlbumTitleDesc
	AlbumArtistAsc
	AlbumArtistDesc
	AlbumReleaseAsc
	AlbumReleaseDesc
	AlbumLabelAsc
	AlbumLabelDesc
	AlbumCatalogAsc
	AlbumCatalogDesc
	AlbumTrackCountAsc
	AlbumTrackCountDesc
)

// TrackSort names one of the fixed track orderings
type TrackSort int

const (
	TrackTitleAsc TrackSort = iota
	TrackTitleDesc
	TrackArtistAsc
	TrackArtistDesc
	TrackAlbumAsc
	TrackAlbumDesc
	TrackDurationAsc
	TrackDurationDesc
	TrackNumberAsc
	TrackNumberDesc
)

// ArtistSort names one of the fixed artist orderings
type ArtistSort int

const (
	ArtistNameAsc ArtistSort = iota
	ArtistNameDesc
	ArtistAlbumsAsc
	ArtistAlbumsDesc
	ArtistTracksAsc
	ArtistTracksDesc
)

// ORDER BY clauses. Only the primary key flips for descending orders.
// Queries alias album as al, artist as ar and track as t.
var albumOrder = map[AlbumSort]string{
	AlbumTitleAsc:       "al.title_sortable COLLATE NOCASE ASC, al.sort_date, al.id",
	AlbumTitleDesc:      "al.title_sortable COLLATE NOCASE DESC, al.sort_date, al.id",
	AlbumArtistAsc:      "ar.name_sortable COLLATE NOCASE ASC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumArtistDesc:     "ar.name_sortable COLLATE NOCASE DESC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumReleaseAsc:     "al.sort_date IS NULL, al.sort_date ASC, al.title_sortable COLLATE NOCASE, al.id",
	AlbumReleaseDesc:    "al.sort_date IS NULL, al.sort_date DESC, al.title_sortable COLLATE NOCASE, al.id",
	AlbumLabelAsc:       "al.label COLLATE NOCASE ASC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumLabelDesc:      "al.label COLLATE NOCASE DESC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumCatalogAsc:     "al.catalog_number COLLATE NOCASE ASC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumCatalogDesc:    "al.catalog_number COLLATE NOCASE DESC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumTrackCountAsc:  "COUNT(t.id) ASC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
	AlbumTrackCountDesc: "COUNT(t.id) DESC, al.sort_date, al.title_sortable COLLATE NOCASE, al.id",
}

var trackOrder = map[TrackSort]string{
	TrackTitleAsc:     "t.title_sortable COLLATE NOCASE ASC, t.id",
	TrackTitleDesc:    "t.title_sortable COLLATE NOCASE DESC, t.id",
	TrackArtistAsc:    "ar.name_sortable COLLATE NOCASE ASC, al.sort_date IS NULL, al.sort_date, al.title_sortable COLLATE NOCASE, t.disc_number, t.track_number, t.id",
	TrackArtistDesc:   "ar.name_sortable COLLATE NOCASE DESC, al.sort_date IS NULL, al.sort_date, al.title_sortable COLLATE NOCASE, t.disc_number, t.track_number, t.id",
	TrackAlbumAsc:     "al.title_sortable COLLATE NOCASE ASC, t.disc_number, t.track_number, t.id",
	TrackAlbumDesc:    "al.title_sortable COLLATE NOCASE DESC, t.disc_number, t.track_number, t.id",
	TrackDurationAsc:  "t.duration ASC, t.title_sortable COLLATE NOCASE, t.id",
	TrackDurationDesc: "t.duration DESC, t.title_sortable COLLATE NOCASE, t.id",
	TrackNumberAsc:    "t.track_number ASC, t.title_sortable COLLATE NOCASE, t.id",
	TrackNumberDesc:   "t.track_number DESC, t.title_sortable COLLATE NOCASE, t.id",
}

var artistOrder = map[ArtistSort]string{
	ArtistNameAsc:    "ar.name_sortable COLLATE NOCASE ASC, ar.id",
	ArtistNameDesc:   "ar.name_sortable COLLATE NOCASE DESC, ar.id",
	ArtistAlbumsAsc:  "COUNT(al.id) ASC, ar.name_sortable COLLATE NOCASE, ar.id",
	ArtistAlbumsDesc: "COUNT(al.id) DESC, ar.name_sortable COLLATE NOCASE, ar.id",
	ArtistTracksAsc:  "COUNT(t.id) ASC, ar.name_sortable COLLATE NOCASE, ar.id",
	ArtistTracksDesc: "COUNT(t.id) DESC, ar.name_sortable COLLATE NOCASE, ar.id",
}

// CLI names, "-desc" suffix for the descending form
var albumSortNames = map[string]AlbumSort{
	"title": AlbumTitleAsc, "title-desc": AlbumTitleDesc,
	"artist": AlbumArtistAsc, "artist-desc": AlbumArtistDesc,
	"release": AlbumReleaseAsc, "release-desc": AlbumReleaseDesc,
	"label": AlbumLabelAsc, "label-desc": AlbumLabelDesc,
	"catalog": AlbumCatalogAsc, "catalog-desc": AlbumCatalogDesc,
	"tracks": AlbumTrackCountAsc, "tracks-desc": AlbumTrackCountDesc,
}

var trackSortNames = map[string]TrackSort{
	"title": TrackTitleAsc, "title-desc": TrackTitleDesc,
	"artist": TrackArtistAsc, "artist-desc": TrackArtistDesc,
	"album": TrackAlbumAsc, "album-desc": TrackAlbumDesc,
	"duration": TrackDurationAsc, "duration-desc": TrackDurationDesc,
	"number": TrackNumberAsc, "number-desc": TrackNumberDesc,
}

var artistSortNames = map[string]ArtistSort{
	"name": ArtistNameAsc, "name-desc": ArtistNameDesc,
	"albums": ArtistAlbumsAsc, "albums-desc": ArtistAlbumsDesc,
	"tracks": ArtistTracksAsc, "tracks-desc": ArtistTracksDesc,
}

// ParseAlbumSort maps a CLI sort name such as "catalog-desc" to its ordering
func ParseAlbumSort(name string) (AlbumSort, error) {
	return parseSort(albumSortNames, name)
}

// ParseTrackSort maps a CLI sort name to its ordering
func ParseTrackSort(name string) (TrackSort, error) {
	return parseSort(trackSortNames, name)
}

// ParseArtistSort maps a CLI sort name to its ordering
func ParseArtistSort(name string) (ArtistSort, error) {
	return parseSort(artistSortNames, name)
}

func sortNames[S comparable](names map[string]S) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AlbumSortNames, TrackSortNames and ArtistSortNames feed CLI help text
func AlbumSortNames() []string { return sortNames(albumSortNames) }
func TrackSortNames() []string { return sortNames(trackSortNames) }
func ArtistSortNames() []string { return sortNames(artistSortNames) }

func parseSort[S comparable](names map[string]S, name string) (S, error) {
	s, ok := names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: unknown sort %q (want one of %s)",
			util.ErrInvalidInput, name, strings.Join(sortNames(names), ", "))
	}
	return s, nil
}
