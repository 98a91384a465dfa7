package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/music-index/internal/library"
	"github.com/franz/music-index/internal/util"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one album, track or artist by id",
}

var showAlbumCmd = &cobra.Command{
	Use:   "album <id>",
	Short: "Show an album with its tracks",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowAlbum,
}

var showTrackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Show a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowTrack,
}

var showArtistCmd = &cobra.Command{
	Use:   "artist <id>",
	Short: "Show an artist with its albums",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowArtist,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showAlbumCmd, showTrackCmd, showArtistCmd)

	showAlbumCmd.Flags().String("art", "", "write the album image to this file")
	showAlbumCmd.Flags().Bool("thumb", false, "write the thumbnail instead of the full image (with --art)")
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: not an id: %q", util.ErrInvalidInput, arg)
	}
	return id, nil
}

func runShowAlbum(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	artPath, _ := cmd.Flags().GetString("art")
	thumb, _ := cmd.Flags().GetBool("thumb")

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	album, err := catalog.GetAlbum(ctx, id)
	if err != nil {
		return err
	}
	if album == nil {
		return fmt.Errorf("%w: album %d", util.ErrNotFound, id)
	}

	artist := "(unknown artist)"
	if album.ArtistID.Valid {
		if name, err := catalog.GetArtistName(ctx, album.ArtistID.Int64); err != nil {
			return err
		} else if name != "" {
			artist = name
		}
	}

	fmt.Printf("%s - %s\n", artist, album.Title)
	if album.SortDate.Valid {
		released := album.SortDate.String
		if album.DatePrecision.Valid && album.DatePrecision.Int64 == 0 {
			released = released[:4]
		}
		fmt.Printf("  Released:  %s\n", released)
	}
	if album.Label.Valid {
		fmt.Printf("  Label:     %s\n", album.Label.String)
	}
	if album.CatalogNumber.Valid {
		fmt.Printf("  Catalog:   %s\n", album.CatalogNumber.String)
	}
	if album.ISRC.Valid {
		fmt.Printf("  ISRC:      %s\n", album.ISRC.String)
	}
	if album.MBID != "" && album.MBID != "none" {
		fmt.Printf("  MBID:      %s\n", album.MBID)
	}
	if album.VinylNumbering {
		fmt.Printf("  Numbering: vinyl sides\n")
	}

	paths, err := db.GetAlbumPaths(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if p.DiscNum < 0 {
			fmt.Printf("  Folder:    %s\n", p.Path)
		} else {
			fmt.Printf("  Disc %d:    %s\n", p.DiscNum, p.Path)
		}
	}
	fmt.Println()

	tracks, err := catalog.ListTracksInAlbum(ctx, id)
	if err != nil {
		return err
	}
	printTracks(tracks)

	if artPath == "" {
		return nil
	}

	kind := library.ArtFull
	if thumb {
		kind = library.ArtThumb
	}
	data, err := catalog.AlbumArt(ctx, id, kind)
	if err != nil {
		return err
	}
	if data == nil {
		util.WarnLog("Album %d has no stored art", id)
		return nil
	}
	if err := os.WriteFile(artPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write art: %w", err)
	}
	util.SuccessLog("Wrote %s (%s)", artPath, humanize.Bytes(uint64(len(data))))
	return nil
}

func runShowTrack(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	track, err := catalog.GetTrack(ctx, id)
	if err != nil {
		return err
	}
	if track == nil {
		return fmt.Errorf("%w: track %d", util.ErrNotFound, id)
	}

	fmt.Printf("%s\n", track.Title)
	if track.ArtistNames.Valid {
		fmt.Printf("  Artist:   %s\n", track.ArtistNames.String)
	}
	if track.AlbumID.Valid {
		album, err := catalog.GetAlbum(ctx, track.AlbumID.Int64)
		if err != nil {
			return err
		}
		if album != nil {
			fmt.Printf("  Album:    %s (id %d)\n", album.Title, album.ID)
		}
	} else {
		fmt.Printf("  Album:    (none)\n")
	}
	fmt.Printf("  Position: disc %s, track %s\n",
		optInt(track.DiscNumber.Int64, track.DiscNumber.Valid), optInt(track.TrackNumber.Int64, track.TrackNumber.Valid))
	fmt.Printf("  Length:   %s\n", formatDuration(track.Duration))
	if track.Genre.Valid {
		fmt.Printf("  Genre:    %s\n", track.Genre.String)
	}
	fmt.Printf("  Location: %s\n", track.Location)
	return nil
}

func runShowArtist(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	artist, err := catalog.GetArtistWithCounts(ctx, id)
	if err != nil {
		return err
	}
	if artist == nil {
		return fmt.Errorf("%w: artist %d", util.ErrNotFound, id)
	}

	fmt.Printf("%s\n", artist.Name)
	if artist.NameSortable != artist.Name {
		fmt.Printf("  Sorts as: %s\n", artist.NameSortable)
	}
	fmt.Printf("  %s, %s\n",
		humanize.Comma(artist.AlbumCount)+pluralize(artist.AlbumCount, " album", " albums"),
		humanize.Comma(artist.TrackCount)+pluralize(artist.TrackCount, " track", " tracks"))
	fmt.Println()

	albums, err := catalog.ListAlbumsByArtist(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range albums {
		fmt.Printf("  %6d  %s\n", a.ID, a.TitleSortable)
	}
	return nil
}

func pluralize(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
