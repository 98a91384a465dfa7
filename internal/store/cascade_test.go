package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/music-index/internal/util"
)

func TestDetachRemovesOrphans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.Ingest(ctx, &TrackMetadata{
		Location:    "/a/t1.flac",
		Title:       "T1",
		Artist:      "Air",
		Album:       "Moon Safari",
		DiscNumber:  1,
		TrackNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, s,
		"SELECT COUNT(*) FROM album_path WHERE album_id = ? AND path = '/a' AND disc_num = 1", res.AlbumID))

	cascade, err := s.DetachTrack(ctx, res.Track.TrackID)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{PathsRemoved: 1, AlbumsRemoved: 1, ArtistsRemoved: 1}, cascade)

	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM album WHERE title = 'Moon Safari'"))
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM artist WHERE name = 'Air'"))
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM album_path"))

	track, err := s.GetTrackByLocation(ctx, "/a/t1.flac")
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.False(t, track.AlbumID.Valid)

	requireClean(t, s)
}

func TestDetachUnknownTrack(t *testing.T) {
	s := openTestStore(t)

	_, err := s.DetachTrack(context.Background(), 42)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestDetachKeepsSharedAlbum(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Ingest(ctx, moonSafari("/a/01.flac", 1))
	require.NoError(t, err)
	_, err = s.Ingest(ctx, moonSafari("/a/02.flac", 2))
	require.NoError(t, err)

	cascade, err := s.DetachTrack(ctx, first.Track.TrackID)
	require.NoError(t, err)
	assert.True(t, cascade.Empty())

	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM album"))
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM album_path"))
	requireClean(t, s)
}

func TestRepointRemovesStalePath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a1, err := s.Ingest(ctx, moonSafari("/f/01.flac", 1))
	require.NoError(t, err)
	_, err = s.Ingest(ctx, moonSafari("/f/02.flac", 2))
	require.NoError(t, err)
	disc2 := moonSafari("/g/01.flac", 1)
	disc2.DiscNumber = 2
	_, err = s.Ingest(ctx, disc2)
	require.NoError(t, err)
	albumA := a1.AlbumID

	// Retag both tracks in /f to another album
	for i, loc := range []string{"/f/01.flac", "/f/02.flac"} {
		m := moonSafari(loc, i+1)
		m.Album = "Talkie Walkie"
		_, err := s.Ingest(ctx, m)
		require.NoError(t, err)

		// The folder still supplies disc 1 while one track remains
		remaining := countRows(t, s,
			"SELECT COUNT(*) FROM album_path WHERE album_id = ? AND path = '/f' AND disc_num = 1", albumA)
		if i == 0 {
			assert.Equal(t, 1, remaining)
		} else {
			assert.Equal(t, 0, remaining)
		}
	}

	// Album A lives on through disc 2
	album, err := s.GetAlbumByID(ctx, albumA)
	require.NoError(t, err)
	require.NotNil(t, album)
	paths, err := s.GetAlbumPaths(ctx, albumA)
	require.NoError(t, err)
	assert.Equal(t, []AlbumPath{{AlbumID: albumA, Path: "/g", DiscNum: 2}}, paths)

	requireClean(t, s)
}

func TestRepointAcrossArtistsRemovesArtist(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, moonSafari("/a/01.flac", 1))
	require.NoError(t, err)

	m := moonSafari("/a/01.flac", 1)
	m.AlbumArtist = "Daft Punk"
	m.Artist = "Daft Punk"
	m.Album = "Homework"
	res, err := s.Ingest(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{PathsRemoved: 1, AlbumsRemoved: 1, ArtistsRemoved: 1}, res.Track.Cascade)

	artist, err := s.GetArtistByName(ctx, "Air")
	require.NoError(t, err)
	assert.Nil(t, artist)
	requireClean(t, s)
}

func TestDiscChangeWithinAlbumMovesPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.Ingest(ctx, moonSafari("/a/01.flac", 1))
	require.NoError(t, err)

	m := moonSafari("/a/01.flac", 1)
	m.DiscNumber = 2
	again, err := s.Ingest(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, res.AlbumID, again.AlbumID)
	assert.Equal(t, int64(1), again.Track.Cascade.PathsRemoved)

	paths, err := s.GetAlbumPaths(ctx, res.AlbumID)
	require.NoError(t, err)
	assert.Equal(t, []AlbumPath{{AlbumID: res.AlbumID, Path: "/a", DiscNum: 2}}, paths)
	requireClean(t, s)
}

func TestDeleteTrackCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.Ingest(ctx, moonSafari("/a/01.flac", 1))
	require.NoError(t, err)
	require.NoError(t, s.RecordScan(ctx, "/a/01.flac", 1700000000))

	playlist, err := s.CreatePlaylist(ctx, "favourites")
	require.NoError(t, err)
	_, err = s.AppendToPlaylist(ctx, playlist, res.Track.TrackID)
	require.NoError(t, err)

	cascade, err := s.DeleteTrack(ctx, "/a/01.flac")
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{PathsRemoved: 1, AlbumsRemoved: 1, ArtistsRemoved: 1}, cascade)

	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM track"))
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM scan_record"))
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM playlist_item"))
	requireClean(t, s)

	// Deleting what is already gone is a no-op
	cascade, err = s.DeleteTrack(ctx, "/a/01.flac")
	require.NoError(t, err)
	assert.True(t, cascade.Empty())
}

func TestCascadeFailureRollsBackMutation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.Ingest(ctx, moonSafari("/a/01.flac", 1))
	require.NoError(t, err)

	// A mapping for a disc no track supplies keeps the album referenced
	_, err = s.db.Exec("INSERT INTO album_path (album_id, path, disc_num) VALUES (?, '/b', 2)", res.AlbumID)
	require.NoError(t, err)

	_, err = s.DetachTrack(ctx, res.Track.TrackID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrConsistency))

	// Nothing of the detach survived: track still attached, its path still there
	track, err := s.GetTrackByLocation(ctx, "/a/01.flac")
	require.NoError(t, err)
	assert.Equal(t, sql.NullInt64{Int64: res.AlbumID, Valid: true}, track.AlbumID)
	assert.Equal(t, 1, countRows(t, s,
		"SELECT COUNT(*) FROM album_path WHERE album_id = ? AND path = '/a' AND disc_num = 1", res.AlbumID))
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM artist"))
}

// TestOrphanFreeAfterMixedMutations walks the library through a series of
// ingests, repoints, detaches and deletes and checks the store stays clean.
func TestOrphanFreeAfterMixedMutations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	albums := []string{"Moon Safari", "Talkie Walkie", "Homework"}
	artists := []string{"Air", "Air", "Daft Punk"}

	for i := range 12 {
		m := &TrackMetadata{
			Location:    "/lib/" + albums[i%3] + "/" + string(rune('a'+i)) + ".flac",
			Title:       string(rune('A' + i)),
			Artist:      artists[i%3],
			Album:       albums[i%3],
			TrackNumber: i + 1,
		}
		_, err := s.Ingest(ctx, m)
		require.NoError(t, err)
	}
	requireClean(t, s)

	locations, err := s.TrackLocations(ctx, "")
	require.NoError(t, err)
	require.Len(t, locations, 12)

	for i, loc := range locations {
		switch i % 3 {
		case 0:
			_, err = s.DeleteTrack(ctx, loc)
		case 1:
			track, terr := s.GetTrackByLocation(ctx, loc)
			require.NoError(t, terr)
			_, err = s.DetachTrack(ctx, track.ID)
		case 2:
			// Retag into a fresh album in the same folder
			_, err = s.Ingest(ctx, &TrackMetadata{Location: loc, Artist: "Justice", Album: "Cross " + loc})
		}
		require.NoError(t, err)
		requireClean(t, s)
	}

	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM artist WHERE name IN ('Air', 'Daft Punk')"))
}
