package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// SummaryReport describes one scan run and the library it left behind
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration
	RunID       string

	// Scan statistics, tallied from the event log
	FilesIngested  int
	FilesCreated   int
	FilesUnchanged int
	FilesShadowed  int
	FilesPruned    int
	FilesFailed    int

	// Cascade totals
	PathsRemoved   int64
	AlbumsRemoved  int64
	ArtistsRemoved int64

	// Library size after the run
	Artists int64
	Albums  int64
	Tracks  int64

	TopErrors []ErrorSummary
	Shadowed  []string

	// Metadata
	Roots        []string
	DatabasePath string
	EventLogPath string
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// GenerateSummaryReport tallies a scan's event log
func GenerateSummaryReport(eventLogPath string) (*SummaryReport, error) {
	events, err := ReadEvents(eventLogPath)
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		EventLogPath: eventLogPath,
		TopErrors:    make([]ErrorSummary, 0),
		Shadowed:     make([]string, 0),
	}

	errorCounts := make(map[string]int)
	var first, last time.Time
	for _, e := range events {
		if report.RunID == "" {
			report.RunID = e.RunID
		}
		if first.IsZero() || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}

		switch e.Event {
		case EventIngest:
			report.FilesIngested++
			if e.Reason == "created" {
				report.FilesCreated++
			}
		case EventSkip:
			if e.Reason == "unchanged" {
				report.FilesUnchanged++
			} else {
				report.FilesShadowed++
				report.Shadowed = append(report.Shadowed, e.Path)
			}
		case EventPrune:
			report.FilesPruned++
		case EventCascade:
			report.PathsRemoved += extraInt(e.Extra, "paths_removed")
			report.AlbumsRemoved += extraInt(e.Extra, "albums_removed")
			report.ArtistsRemoved += extraInt(e.Extra, "artists_removed")
		case EventError:
			report.FilesFailed++
			errorCounts[e.Error]++
		}
	}
	if !first.IsZero() {
		report.Duration = last.Sub(first)
	}

	report.TopErrors = topErrors(errorCounts, 10)
	return report, nil
}

func extraInt(extra map[string]string, key string) int64 {
	n, _ := strconv.ParseInt(extra[key], 10, 64)
	return n
}

// topErrors returns the most common errors
func topErrors(counts map[string]int, limit int) []ErrorSummary {
	errors := make([]ErrorSummary, 0, len(counts))
	for err, count := range counts {
		errors = append(errors, ErrorSummary{Error: err, Count: count})
	}

	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})

	if len(errors) > limit {
		errors = errors[:limit]
	}
	return errors
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# Music Library Index - Scan Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", report.RunID))
	}
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}
	for _, root := range report.Roots {
		md.WriteString(fmt.Sprintf("- Root: `%s`\n", root))
	}
	if len(report.Roots) > 0 {
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")

	md.WriteString("## 📊 Scan\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Files Ingested | %s |\n", humanize.Comma(int64(report.FilesIngested))))
	md.WriteString(fmt.Sprintf("| New Tracks | %s |\n", humanize.Comma(int64(report.FilesCreated))))
	md.WriteString(fmt.Sprintf("| Unchanged | %s |\n", humanize.Comma(int64(report.FilesUnchanged))))
	if report.FilesShadowed > 0 {
		md.WriteString(fmt.Sprintf("| Shadowed | %d |\n", report.FilesShadowed))
	}
	if report.FilesPruned > 0 {
		md.WriteString(fmt.Sprintf("| Pruned | %d |\n", report.FilesPruned))
	}
	if report.FilesFailed > 0 {
		md.WriteString(fmt.Sprintf("| Failed | %d |\n", report.FilesFailed))
	}
	if report.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", report.Duration.Round(time.Second)))
	}
	md.WriteString("\n")

	if report.PathsRemoved > 0 || report.AlbumsRemoved > 0 || report.ArtistsRemoved > 0 {
		md.WriteString("## 🧹 Cleanup\n\n")
		md.WriteString("| Removed | Count |\n")
		md.WriteString("|---------|-------|\n")
		md.WriteString(fmt.Sprintf("| Album paths | %d |\n", report.PathsRemoved))
		md.WriteString(fmt.Sprintf("| Albums | %d |\n", report.AlbumsRemoved))
		md.WriteString(fmt.Sprintf("| Artists | %d |\n", report.ArtistsRemoved))
		md.WriteString("\n")
	}

	if report.Artists > 0 || report.Albums > 0 || report.Tracks > 0 {
		md.WriteString("## 📚 Library\n\n")
		md.WriteString("| Entity | Count |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Artists | %s |\n", humanize.Comma(report.Artists)))
		md.WriteString(fmt.Sprintf("| Albums | %s |\n", humanize.Comma(report.Albums)))
		md.WriteString(fmt.Sprintf("| Tracks | %s |\n", humanize.Comma(report.Tracks)))
		md.WriteString("\n")
	}

	if len(report.Shadowed) > 0 {
		md.WriteString("## 🪞 Shadowed Files\n\n")
		md.WriteString("*Another folder already supplies these albums and discs*\n\n")
		for _, path := range report.Shadowed {
			md.WriteString(fmt.Sprintf("- `%s`\n", truncatePath(path, 80)))
		}
		md.WriteString("\n")
	}

	if len(report.TopErrors) > 0 {
		md.WriteString("## ⚠️ Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range report.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, err.Error))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by mli - Music Library Index*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
