package meta

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/franz/music-index/internal/store"
	"github.com/franz/music-index/internal/util"
)

// Raw tag names per concern. ID3v2 frame ids, Vorbis comments (lowercased
// by the tag reader) and MP4 atoms are all looked up case-insensitively.
var (
	rawDate            = []string{"TDRC", "TDOR", "TYER", "date", "originaldate", "year", "\xa9day"}
	rawTrackNumber     = []string{"TRCK", "TRK", "tracknumber", "trkn"}
	rawDiscNumber      = []string{"TPOS", "TPA", "discnumber", "disk"}
	rawLabel           = []string{"TPUB", "TPB", "label", "organization", "publisher"}
	rawCatalogNumber   = []string{"catalognumber", "catalog", "labelno"}
	rawISRC            = []string{"TSRC", "TRC", "isrc"}
	rawMBIDAlbum       = []string{"musicbrainz_albumid", "musicbrainz album id"}
	rawSortTitle       = []string{"TSOT", "titlesort", "sonm"}
	rawSortArtist      = []string{"TSOP", "artistsort", "soar"}
	rawSortAlbum       = []string{"TSOA", "albumsort", "soal"}
	rawSortAlbumArtist = []string{"TSO2", "albumartistsort", "soaa"}
)

// ReadOptions controls what ReadFile gathers besides tags
type ReadOptions struct {
	Duration bool              // probe the duration with ffprobe when available
	Art      bool              // attach processed cover art when this track carries it
	Retry    *util.RetryConfig // nil uses util.DefaultRetryConfig
}

// ReadFile reads one audio file into the shape the store ingests. A file
// without any tags still yields a record named after the file.
func ReadFile(path string, opts *ReadOptions) (*store.TrackMetadata, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}

	f, err := util.RetryableOpen(path, opts.Retry)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var md *store.TrackMetadata
	var picture []byte

	m, err := tag.ReadFrom(f)
	switch {
	case err == nil:
		md = FromTags(path, m)
		if pic := m.Picture(); pic != nil {
			picture = pic.Data
		}
	case errors.Is(err, tag.ErrNoTagsFound):
		util.DebugLog("No tags in %s", path)
		md = &store.TrackMetadata{Location: path}
	default:
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	if md.Title == "" {
		md.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		md.TitleSortable = md.Title
	}

	if opts.Duration {
		if d, err := ProbeDuration(path); err == nil {
			md.Duration = d
		} else if !errors.Is(err, util.ErrNotFound) {
			util.DebugLog("Reading duration failed for %s: %v", path, err)
		}
	}

	if opts.Art && CarriesAlbumArt(md) {
		if picture == nil {
			picture = FolderArt(filepath.Dir(path))
		}
		if picture != nil {
			full, thumb, err := ProcessArt(picture)
			if err != nil {
				// Undecodable art is dropped, the track still gets indexed
				util.WarnLog("Failed to process album art for %s: %v", path, err)
			} else {
				md.Image, md.Thumb = full, thumb
			}
		}
	}

	return md, nil
}

// FromTags maps parsed tags onto a track record
func FromTags(path string, m tag.Metadata) *store.TrackMetadata {
	raw := m.Raw()

	md := &store.TrackMetadata{
		Location:    path,
		Title:       CleanString(m.Title()),
		Artist:      CleanString(m.Artist()),
		AlbumArtist: CleanString(m.AlbumArtist()),
		Album:       CleanString(m.Album()),
		Genre:       CleanString(m.Genre()),
		Year:        m.Year(),

		Date:          rawString(raw, rawDate...),
		Label:         CleanString(rawString(raw, rawLabel...)),
		CatalogNumber: CleanString(rawString(raw, rawCatalogNumber...)),
		ISRC:          CleanString(rawString(raw, rawISRC...)),
		MBIDAlbum:     CleanString(rawString(raw, rawMBIDAlbum...)),
	}

	md.TitleSortable = SortableName(md.Title, rawString(raw, rawSortTitle...))
	md.ArtistSortable = SortableName(md.Artist, rawString(raw, rawSortArtist...))
	md.AlbumSortable = SortableName(md.Album, rawString(raw, rawSortAlbum...))
	md.AlbumArtistSortable = SortableName(md.AlbumArtist, rawString(raw, rawSortAlbumArtist...))

	md.TrackNumber, md.TrackTotal = m.Track()
	md.DiscNumber, md.DiscTotal = m.Disc()

	// The parsed numbers lose vinyl sides ("A3" reads as 0), so look at the raw text
	if s := rawString(raw, rawTrackNumber...); s != "" {
		pos := ParseTrackPosition(s)
		if pos.Vinyl {
			md.TrackNumber = pos.Number
			md.DiscNumber = pos.Side
			md.VinylNumbering = true
		} else if md.TrackNumber == 0 && pos.Number > 0 {
			md.TrackNumber, md.TrackTotal = pos.Number, pos.Total
		}
	}
	if md.DiscNumber == 0 {
		if s := rawString(raw, rawDiscNumber...); s != "" {
			pos := ParseDiscPosition(s)
			md.DiscNumber, md.DiscTotal = pos.Number, pos.Total
		}
	}

	return md
}

// CarriesAlbumArt reports whether this track supplies its album's art:
// the first track of the first (or only) disc.
func CarriesAlbumArt(md *store.TrackMetadata) bool {
	return md.CarriesAlbum()
}

// rawString returns the first non-empty raw tag among keys. User-defined
// ID3 frames (TXXX) are matched on their description.
func rawString(raw map[string]interface{}, keys ...string) string {
	if len(raw) == 0 {
		return ""
	}

	for _, want := range keys {
		for k, v := range raw {
			if strings.EqualFold(k, want) {
				if s := rawValue(v); s != "" {
					return s
				}
			}
		}
	}

	// TXXX, TXXX_0, TXXX_1 ...
	for k, v := range raw {
		if !strings.HasPrefix(k, "TXXX") && !strings.HasPrefix(k, "----") {
			continue
		}
		c, ok := v.(*tag.Comm)
		if !ok {
			continue
		}
		for _, want := range keys {
			if strings.EqualFold(c.Description, want) && strings.TrimSpace(c.Text) != "" {
				return strings.TrimSpace(c.Text)
			}
		}
	}

	return ""
}

func rawValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []string:
		if len(x) > 0 {
			return strings.TrimSpace(x[0])
		}
	case int:
		if x > 0 {
			return strconv.Itoa(x)
		}
	case *tag.Comm:
		return strings.TrimSpace(x.Text)
	}
	return ""
}
