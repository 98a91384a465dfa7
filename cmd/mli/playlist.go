package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/franz/music-index/internal/store"
	"github.com/franz/music-index/internal/util"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage ordered track lists",
	Long: `Create playlists and add or remove tracks by id.

Entries keep their order; removing one closes the gap. Tracks that leave the
library disappear from every playlist.`,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistCreate,
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <name> <track-id>...",
	Short: "Append tracks to a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPlaylistAdd,
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove one playlist entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistRemove,
}

var playlistShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "List playlists, or the entries of one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlaylistShow,
}

func init() {
	rootCmd.AddCommand(playlistCmd)
	playlistCmd.AddCommand(playlistCreateCmd, playlistAddCmd, playlistRemoveCmd, playlistShowCmd)
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	db, _, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.CreatePlaylist(context.Background(), args[0])
	if err != nil {
		return err
	}
	util.SuccessLog("Created playlist %q (id %d)", args[0], id)
	return nil
}

func runPlaylistAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	playlist, err := findPlaylist(ctx, db, args[0])
	if err != nil {
		return err
	}

	for _, arg := range args[1:] {
		trackID, err := parseID(arg)
		if err != nil {
			return err
		}
		itemID, err := db.AppendToPlaylist(ctx, playlist.ID, trackID)
		if err != nil {
			return err
		}
		util.DebugLog("Added track %d as item %d", trackID, itemID)
	}
	util.SuccessLog("Added %d tracks to %q", len(args)-1, playlist.Name)
	return nil
}

func runPlaylistRemove(cmd *cobra.Command, args []string) error {
	itemID, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, _, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RemovePlaylistItem(context.Background(), itemID); err != nil {
		return err
	}
	util.SuccessLog("Removed playlist item %d", itemID)
	return nil
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if len(args) == 0 {
		playlists, err := db.ListPlaylists(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tNAME")
		for _, p := range playlists {
			fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Name)
		}
		return w.Flush()
	}

	playlist, err := findPlaylist(ctx, db, args[0])
	if err != nil {
		return err
	}
	entries, err := db.ListPlaylistTracks(ctx, playlist.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "POS\tITEM\tTRACK\tTITLE\tLENGTH")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
			e.Position, e.ItemID, e.Track.ID, e.Track.Title, formatDuration(e.Track.Duration))
	}
	return w.Flush()
}

func findPlaylist(ctx context.Context, db *store.Store, name string) (*store.Playlist, error) {
	playlist, err := db.GetPlaylistByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist %q", util.ErrNotFound, name)
	}
	return playlist, nil
}
