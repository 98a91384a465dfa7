package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/franz/music-index/internal/meta"
	"github.com/franz/music-index/internal/report"
	"github.com/franz/music-index/internal/store"
	"github.com/franz/music-index/internal/util"
)

// AudioExtensions are the default supported audio file extensions
var AudioExtensions = []string{
	".mp3",
	".flac",
	".m4a",
	".aac",
	".ogg",
	".opus",
	".wav",
	".aiff",
	".aif",
	".wma",
	".ape",
	".wv",  // WavPack
	".mpc", // Musepack
}

// Scanner walks library roots and feeds every audio file into the store.
// Tag reading runs on a worker pool; a single goroutine does all writes.
type Scanner struct {
	store       *store.Store
	extensions  map[string]bool
	concurrency int
	force       bool
	readOpts    *meta.ReadOptions
	logger      *report.EventLogger
}

// Config holds scanner configuration
type Config struct {
	Store          *store.Store
	AdditionalExts []string
	Concurrency    int
	Force          bool // re-read files whose mtime is unchanged
	Duration       bool // read durations with ffprobe
	Art            bool // store album art
	Retry          *util.RetryConfig
	Logger         *report.EventLogger
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	extMap := make(map[string]bool)
	for _, ext := range AudioExtensions {
		extMap[strings.ToLower(ext)] = true
	}
	for _, ext := range cfg.AdditionalExts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	return &Scanner{
		store:       cfg.Store,
		extensions:  extMap,
		concurrency: cfg.Concurrency,
		force:       cfg.Force,
		readOpts: &meta.ReadOptions{
			Duration: cfg.Duration,
			Art:      cfg.Art,
			Retry:    cfg.Retry,
		},
		logger: cfg.Logger,
	}
}

// Result summarizes one scan
type Result struct {
	FilesFound     int
	FilesIngested  int
	FilesCreated   int
	FilesUnchanged int
	FilesShadowed  int
	FilesPruned    int
	Cascade        store.CascadeResult
	Errors         []error
}

// scanned is a file whose tags were read, waiting for the writer
type scanned struct {
	path  string
	mtime int64
	md    *store.TrackMetadata
}

// Scan indexes every audio file under roots. Tracks under roots dropped since
// the previous scan, and tracks whose files are gone, are removed first.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Result, error) {
	roots, err := normalizeRoots(roots)
	if err != nil {
		return nil, err
	}
	util.InfoLog("Starting scan of: %s", strings.Join(roots, ", "))

	result := &Result{Errors: make([]error, 0)}
	var errMu sync.Mutex
	addError := func(path string, err error) {
		errMu.Lock()
		result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
		errMu.Unlock()
		s.logger.LogError(path, err)
	}

	if err := s.prune(ctx, roots, result); err != nil {
		return result, err
	}

	if s.force {
		if err := s.store.ForgetScanRecords(ctx); err != nil {
			return result, err
		}
	}
	mtimes, err := s.store.ScanMtimes(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load scan records: %w", err)
	}
	util.DebugLog("Loaded %d scan records", len(mtimes))

	filePaths := make(chan string, 100)
	toWrite := make(chan scanned, 100)

	var filesFound atomic.Int64
	var filesProcessed atomic.Int64
	var filesUnchanged atomic.Int64

	progressCtx, cancelProgress := context.WithCancel(ctx)
	defer cancelProgress()
	bar := s.startProgress(progressCtx, &filesFound, &filesProcessed, &filesUnchanged)

	// All store writes happen on this goroutine
	var writer sync.WaitGroup
	writer.Go(func() {
		for item := range toWrite {
			s.write(ctx, item, result, addError)
		}
	})

	readDone := make(chan error, 1)
	go func() {
		readDone <- s.readFiles(ctx, filePaths, toWrite, mtimes, &filesProcessed, &filesUnchanged, addError)
	}()

	var walkErr error
	for _, root := range roots {
		walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				util.WarnLog("Error accessing path %s: %v", path, err)
				addError(path, fmt.Errorf("access error: %w", err))
				return nil
			}
			if d.IsDir() || !s.isAudioFile(path) {
				return nil
			}

			filesFound.Add(1)
			select {
			case filePaths <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil {
			break
		}
	}

	close(filePaths)
	readErr := <-readDone
	close(toWrite)
	writer.Wait()

	cancelProgress()
	if bar != nil {
		bar.Finish()
	}

	result.FilesFound = int(filesFound.Load())
	result.FilesUnchanged = int(filesUnchanged.Load())

	if walkErr != nil {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}
	if readErr != nil {
		return result, readErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := s.store.SetScanRoots(ctx, roots); err != nil {
		return result, err
	}

	util.SuccessLog("Scan complete: %d files found, %d ingested, %d unchanged, %d shadowed, %d pruned, %d errors",
		result.FilesFound, result.FilesIngested, result.FilesUnchanged,
		result.FilesShadowed, result.FilesPruned, len(result.Errors))

	return result, nil
}

// readFiles runs the tag-reading pool until paths is closed. Once ctx is
// cancelled the remaining paths are drained unread so the walk never blocks,
// and the cancellation is returned.
func (s *Scanner) readFiles(ctx context.Context, paths <-chan string, out chan<- scanned,
	mtimes map[string]int64, processed, unchanged *atomic.Int64, addError func(string, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		g.Go(func() error {
			for path := range paths {
				if ctx.Err() != nil {
					continue
				}

				item, same, err := s.read(path, mtimes)
				processed.Add(1)
				switch {
				case err != nil:
					util.ErrorLog("Failed to read %s: %v", path, err)
					addError(path, err)
				case same:
					unchanged.Add(1)
					s.logger.LogSkip(path, "unchanged")
				default:
					select {
					case out <- item:
					case <-ctx.Done():
					}
				}
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}

// read stats and tags one file. Files whose mtime matches the scan record
// are reported unchanged without opening them.
func (s *Scanner) read(path string, mtimes map[string]int64) (scanned, bool, error) {
	st, err := util.StatFile(path, s.readOpts.Retry)
	if err != nil {
		return scanned{}, false, err
	}
	if prev, ok := mtimes[path]; ok && prev == st.MtimeUnix {
		return scanned{}, true, nil
	}

	md, err := meta.ReadFile(path, s.readOpts)
	if err != nil {
		return scanned{}, false, err
	}
	return scanned{path: path, mtime: st.MtimeUnix, md: md}, false, nil
}

// write ingests one file and records its mtime. Runs on the writer goroutine only.
func (s *Scanner) write(ctx context.Context, item scanned, result *Result, addError func(string, error)) {
	res, err := s.store.Ingest(ctx, item.md)
	switch {
	case errors.Is(err, util.ErrShadowedTrack):
		// Not recorded, so the file is retried once the other folder is gone
		util.WarnLog("Skipping %s: %v", item.path, err)
		result.FilesShadowed++
		s.logger.LogSkip(item.path, "shadowed")
		return
	case err != nil:
		util.ErrorLog("Failed to ingest %s: %v", item.path, err)
		addError(item.path, err)
		return
	}

	result.FilesIngested++
	if res.Track.Created {
		result.FilesCreated++
	}
	s.logger.LogIngest(item.path, res.Track.TrackID, res.AlbumID, res.ArtistID, res.Track.Created)
	s.recordCascade(item.path, res.Track.Cascade, result)

	if err := s.store.RecordScan(ctx, item.path, item.mtime); err != nil {
		addError(item.path, err)
	}
	util.DebugLog("Indexed: %s", item.path)
}

// prune deletes tracks under roots that are no longer configured and tracks
// whose files have vanished
func (s *Scanner) prune(ctx context.Context, roots []string, result *Result) error {
	previous, err := s.store.ScanRoots(ctx)
	if err != nil {
		return err
	}

	for _, old := range previous {
		if underAny(old, roots) {
			continue
		}
		locations, err := s.store.TrackLocations(ctx, old)
		if err != nil {
			return err
		}
		for _, loc := range locations {
			if underAny(loc, roots) {
				continue
			}
			if err := s.deleteTrack(ctx, loc, "root removed", result); err != nil {
				return err
			}
		}
	}

	for _, root := range roots {
		locations, err := s.store.TrackLocations(ctx, root)
		if err != nil {
			return err
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); !errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err := s.deleteTrack(ctx, loc, "file missing", result); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scanner) deleteTrack(ctx context.Context, location, reason string, result *Result) error {
	cascade, err := s.store.DeleteTrack(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to prune %s: %w", location, err)
	}
	util.DebugLog("Pruned %s (%s)", location, reason)
	result.FilesPruned++
	s.logger.LogPrune(location, reason)
	s.recordCascade(location, cascade, result)
	return nil
}

func (s *Scanner) recordCascade(path string, c store.CascadeResult, result *Result) {
	if c.Empty() {
		return
	}
	result.Cascade.PathsRemoved += c.PathsRemoved
	result.Cascade.AlbumsRemoved += c.AlbumsRemoved
	result.Cascade.ArtistsRemoved += c.ArtistsRemoved
	s.logger.LogCascade(path, report.CascadeCounts{
		PathsRemoved:   c.PathsRemoved,
		AlbumsRemoved:  c.AlbumsRemoved,
		ArtistsRemoved: c.ArtistsRemoved,
	})
}

// startProgress shows a progress bar on a terminal and periodic log lines otherwise
func (s *Scanner) startProgress(ctx context.Context, found, processed, unchanged *atomic.Int64) *progressbar.ProgressBar {
	if util.IsQuiet() {
		return nil
	}

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWidth(barWidth()),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f, p, u := found.Load(), processed.Load(), unchanged.Load()
				if f == 0 {
					continue
				}
				if bar != nil {
					bar.Describe(fmt.Sprintf("Scanning | %d found | %d unchanged", f, u))
					bar.Set64(p)
				} else {
					util.InfoLog("Progress: found %d audio files, processed %d (unchanged: %d)", f, p, u)
				}
			}
		}
	}()

	return bar
}

// barWidth leaves room for the description and counters
func barWidth() int {
	w := util.TerminalWidth(os.Stdout, 120) / 3
	if w > 40 {
		return 40
	}
	if w < 10 {
		return 10
	}
	return w
}

// isAudioFile checks if a file has a supported audio extension
func (s *Scanner) isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.extensions[ext]
}

// GetSupportedExtensions returns the list of supported extensions
func (s *Scanner) GetSupportedExtensions() []string {
	exts := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// normalizeRoots makes roots absolute and clean, dropping duplicates
func normalizeRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no library roots given", util.ErrInvalidConfig)
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("invalid root %s: %w", r, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: root %s: %w", util.ErrInvalidConfig, r, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: root %s is not a directory", util.ErrInvalidConfig, r)
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	sort.Strings(out)
	return out, nil
}

// underAny reports whether path is one of roots or inside one
func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
