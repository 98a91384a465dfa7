package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventIngest  EventType = "ingest"  // file written to the index
	EventSkip    EventType = "skip"    // file left alone (unchanged or shadowed)
	EventCascade EventType = "cascade" // albums/artists/paths removed after a track moved
	EventPrune   EventType = "prune"   // track deleted because its file or root is gone
	EventError   EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is one line of the scan log
type Event struct {
	Timestamp time.Time         `json:"ts"`
	RunID     string            `json:"run_id"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	Path      string            `json:"path,omitempty"`
	TrackID   int64             `json:"track_id,omitempty"`
	AlbumID   int64             `json:"album_id,omitempty"`
	ArtistID  int64             `json:"artist_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// CascadeCounts mirrors what the consistency pass removed
type CascadeCounts struct {
	PathsRemoved   int64
	AlbumsRemoved  int64
	ArtistsRemoved int64
}

// EventLogger writes events to a JSONL file, one file per scan run
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.NewString()
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s-%s.jsonl", timestamp, runID[:8])
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogIngest logs a file written to the index
func (l *EventLogger) LogIngest(path string, trackID, albumID, artistID int64, created bool) error {
	action := "updated"
	if created {
		action = "created"
	}
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventIngest,
		Path:     path,
		TrackID:  trackID,
		AlbumID:  albumID,
		ArtistID: artistID,
		Reason:   action,
	})
}

// LogSkip logs a file that was not written
func (l *EventLogger) LogSkip(path, reason string) error {
	level := LevelDebug
	if reason != "unchanged" {
		level = LevelWarning
	}
	return l.Log(&Event{
		Level:  level,
		Event:  EventSkip,
		Path:   path,
		Reason: reason,
	})
}

// LogCascade logs rows removed by the consistency pass after a track mutation
func (l *EventLogger) LogCascade(path string, c CascadeCounts) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventCascade,
		Path:  path,
		Extra: map[string]string{
			"paths_removed":   fmt.Sprintf("%d", c.PathsRemoved),
			"albums_removed":  fmt.Sprintf("%d", c.AlbumsRemoved),
			"artists_removed": fmt.Sprintf("%d", c.ArtistsRemoved),
		},
	})
}

// LogPrune logs a track deleted from the index
func (l *EventLogger) LogPrune(path, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventPrune,
		Path:   path,
		Reason: reason,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: EventError,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the identifier stamped on every event of this run
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

// ReadEvents loads every event from a JSONL log
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("event log line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}
