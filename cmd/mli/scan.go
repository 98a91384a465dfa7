package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/music-index/internal/library"
	"github.com/franz/music-index/internal/meta"
	"github.com/franz/music-index/internal/report"
	"github.com/franz/music-index/internal/scan"
	"github.com/franz/music-index/internal/store"
	"github.com/franz/music-index/internal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Scan music folders into the library index",
	Long: `Scan one or more music folders and bring the index up to date.

Before reading any files, tracks under roots that are no longer configured
and tracks whose files have disappeared are removed, together with any albums
and artists left empty. Files whose modification time has not changed since
the last scan are skipped unless --force is given.

Roots come from the arguments, --root, or the "roots" list in the config file.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSlice("root", nil, "music folder to index (repeatable)")
	scanCmd.Flags().Int("concurrency", 4, "number of tag-reading workers")
	scanCmd.Flags().Bool("force", false, "re-read files even when unchanged since the last scan")
	scanCmd.Flags().Bool("nas-mode", false, "tune for network storage (default: auto-detect)")
	scanCmd.Flags().Bool("no-art", false, "do not store album art")
	scanCmd.Flags().Bool("no-duration", false, "do not probe durations with ffprobe")
	scanCmd.Flags().String("artifacts", "artifacts", "directory for event logs and reports")
	scanCmd.Flags().StringSlice("ext", nil, "additional audio file extensions")

	viper.BindPFlag("roots", scanCmd.Flags().Lookup("root"))
	viper.BindPFlag("concurrency", scanCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("force", scanCmd.Flags().Lookup("force"))
	viper.BindPFlag("artifacts", scanCmd.Flags().Lookup("artifacts"))
	viper.BindPFlag("extensions", scanCmd.Flags().Lookup("ext"))
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	roots := args
	if len(roots) == 0 {
		roots = GetConfigStringSlice("roots")
	}
	if len(roots) == 0 {
		return fmt.Errorf("at least one root is required (use arguments, --root or set roots in config)")
	}

	dbPath := GetConfigString("db", "mli.db")
	artifacts := GetConfigString("artifacts", "artifacts")
	noArt, _ := cmd.Flags().GetBool("no-art")
	noDuration, _ := cmd.Flags().GetBool("no-duration")

	// nil lets TuneForRoots detect network storage itself
	var nasMode *bool
	if cmd.Flags().Changed("nas-mode") || viper.IsSet("nas_mode") {
		v := viper.GetBool("nas_mode")
		if cmd.Flags().Changed("nas-mode") {
			v, _ = cmd.Flags().GetBool("nas-mode")
		}
		nasMode = &v
	}
	tuning := util.TuneForRoots(roots, nasMode, GetConfigInt("concurrency", 4))
	util.DebugLog("%s", tuning)

	util.InfoLog("Opening database: %s", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(artifacts, logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

	if !noDuration && !meta.CheckFFprobeAvailable() {
		util.WarnLog("ffprobe not found in PATH - track durations will be 0")
		util.WarnLog("Install ffmpeg to record durations: https://ffmpeg.org/")
	}

	scanner := scan.New(&scan.Config{
		Store:          db,
		AdditionalExts: GetConfigStringSlice("extensions"),
		Concurrency:    tuning.Concurrency,
		Force:          viper.GetBool("force"),
		Duration:       !noDuration,
		Art:            !noArt,
		Retry:          tuning.Retry,
		Logger:         logger,
	})

	startTime := time.Now()
	result, err := scanner.Scan(ctx, roots)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	elapsed := time.Since(startTime)

	counts, err := library.New(db.DB()).Counts(ctx)
	if err != nil {
		return err
	}

	util.InfoLog("")
	util.SuccessLog("=== Scan Summary ===")
	util.InfoLog("Total time: %v", elapsed.Round(time.Millisecond))
	util.InfoLog("  Files found: %s", humanize.Comma(int64(result.FilesFound)))
	util.InfoLog("  Indexed: %s (%s new)", humanize.Comma(int64(result.FilesIngested)), humanize.Comma(int64(result.FilesCreated)))
	util.InfoLog("  Unchanged: %s", humanize.Comma(int64(result.FilesUnchanged)))
	if result.FilesShadowed > 0 {
		util.WarnLog("  Shadowed copies skipped: %d", result.FilesShadowed)
	}
	if result.FilesPruned > 0 {
		util.InfoLog("  Removed from index: %d", result.FilesPruned)
	}
	if !result.Cascade.Empty() {
		util.InfoLog("  Cleaned up: %d album paths, %d albums, %d artists",
			result.Cascade.PathsRemoved, result.Cascade.AlbumsRemoved, result.Cascade.ArtistsRemoved)
	}
	if len(result.Errors) > 0 {
		util.WarnLog("  Errors: %d", len(result.Errors))
	}
	util.InfoLog("")
	util.InfoLog("Library: %s artists, %s albums, %s tracks",
		humanize.Comma(counts.Artists), humanize.Comma(counts.Albums), humanize.Comma(counts.Tracks))

	if logger.Path() == "" {
		return nil
	}
	logger.Close()

	summary, err := report.GenerateSummaryReport(logger.Path())
	if err != nil {
		util.WarnLog("Failed to summarize event log: %v", err)
		return nil
	}
	// Unchanged files are logged at debug level only
	summary.FilesUnchanged = result.FilesUnchanged
	summary.Duration = elapsed
	summary.Roots = roots
	summary.DatabasePath = dbPath
	summary.Artists, summary.Albums, summary.Tracks = counts.Artists, counts.Albums, counts.Tracks

	reportPath := filepath.Join(artifacts, fmt.Sprintf("scan-%s.md", startTime.Format("20060102-150405")))
	if err := report.WriteMarkdownReport(summary, reportPath); err != nil {
		util.WarnLog("Failed to write report: %v", err)
		return nil
	}
	util.InfoLog("Report: %s", reportPath)

	return nil
}
