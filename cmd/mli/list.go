package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/music-index/internal/library"
	"github.com/franz/music-index/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List albums, tracks or artists in a chosen order",
}

var listAlbumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List albums",
	Long: "List every album. Sort orders: " + strings.Join(library.AlbumSortNames(), ", ") + `.

With --artist only that artist's albums are shown, oldest release first.`,
	Args: cobra.NoArgs,
	RunE: runListAlbums,
}

var listTracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List tracks",
	Long: "List every track. Sort orders: " + strings.Join(library.TrackSortNames(), ", ") + `.

With --album the album's tracks are shown in disc and track order; with
--artist every track of that artist's albums.`,
	Args: cobra.NoArgs,
	RunE: runListTracks,
}

var listArtistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "List artists",
	Long:  "List every artist. Sort orders: " + strings.Join(library.ArtistSortNames(), ", ") + ".",
	Args:  cobra.NoArgs,
	RunE:  runListArtists,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listAlbumsCmd, listTracksCmd, listArtistsCmd)

	listAlbumsCmd.Flags().String("sort", "title", "sort order")
	listAlbumsCmd.Flags().Int64("artist", 0, "only albums by this artist id")

	listTracksCmd.Flags().String("sort", "title", "sort order")
	listTracksCmd.Flags().Int64("album", 0, "only tracks of this album id")
	listTracksCmd.Flags().Int64("artist", 0, "only tracks by this artist id")

	listArtistsCmd.Flags().String("sort", "name", "sort order")
}

func runListAlbums(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sortName, _ := cmd.Flags().GetString("sort")
	artistID, _ := cmd.Flags().GetInt64("artist")

	by, err := library.ParseAlbumSort(sortName)
	if err != nil {
		return err
	}

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	var refs []library.AlbumRef
	if artistID != 0 {
		refs, err = catalog.ListAlbumsByArtist(ctx, artistID)
	} else {
		refs, err = catalog.ListAlbums(ctx, by)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE")
	for _, r := range refs {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, r.TitleSortable)
	}
	return w.Flush()
}

func runListTracks(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sortName, _ := cmd.Flags().GetString("sort")
	albumID, _ := cmd.Flags().GetInt64("album")
	artistID, _ := cmd.Flags().GetInt64("artist")

	by, err := library.ParseTrackSort(sortName)
	if err != nil {
		return err
	}

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	var tracks []store.Track
	switch {
	case albumID != 0:
		tracks, err = catalog.ListTracksInAlbum(ctx, albumID)
	case artistID != 0:
		tracks, err = catalog.ListTracksByArtist(ctx, artistID)
	default:
		tracks, err = catalog.ListTracks(ctx, by)
	}
	if err != nil {
		return err
	}

	printTracks(tracks)
	return nil
}

func runListArtists(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sortName, _ := cmd.Flags().GetString("sort")

	by, err := library.ParseArtistSort(sortName)
	if err != nil {
		return err
	}

	db, catalog, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	refs, err := catalog.ListArtists(ctx, by)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, r := range refs {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, r.NameSortable)
	}
	return w.Flush()
}

func printTracks(tracks []store.Track) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISC\tNO\tTITLE\tLENGTH\tLOCATION")
	for _, t := range tracks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, optInt(t.DiscNumber.Int64, t.DiscNumber.Valid), optInt(t.TrackNumber.Int64, t.TrackNumber.Valid),
			t.Title, formatDuration(t.Duration), t.Location)
	}
	w.Flush()
}

func optInt(n int64, valid bool) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}

// formatDuration renders seconds as m:ss, or h:mm:ss past an hour
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds) * time.Second
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
