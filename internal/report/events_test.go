package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewEventLogger(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if logger.Path() == "" {
		t.Fatal("EventLogger path is empty")
	}

	if _, err := os.Stat(logger.Path()); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.Path())
	}

	filename := filepath.Base(logger.Path())
	if !strings.HasPrefix(filename, "events-") || !strings.HasSuffix(filename, ".jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
	if !strings.Contains(filename, logger.RunID()[:8]) {
		t.Errorf("Event log filename %s does not carry run id %s", filename, logger.RunID())
	}
}

func TestEventLoggerRoundTrip(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogIngest("/music/air/01.flac", 1, 2, 3, true)
	logger.LogSkip("/music/air/02.flac", "unchanged")
	logger.LogCascade("/music/air/01.flac", CascadeCounts{PathsRemoved: 1, AlbumsRemoved: 1, ArtistsRemoved: 1})
	logger.LogPrune("/music/gone.mp3", "file missing")
	logger.LogError("/music/bad.mp3", errors.New("bad header"))
	logger.Close()

	events, err := ReadEvents(logger.Path())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d", len(events))
	}

	want := []EventType{EventIngest, EventSkip, EventCascade, EventPrune, EventError}
	for i, e := range events {
		if e.Event != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.Event)
		}
		if e.RunID != logger.RunID() {
			t.Errorf("event %d: run id %q, expected %q", i, e.RunID, logger.RunID())
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d: timestamp not set", i)
		}
	}

	if events[0].TrackID != 1 || events[0].AlbumID != 2 || events[0].ArtistID != 3 {
		t.Errorf("ingest ids not recorded: %+v", events[0])
	}
	if events[0].Reason != "created" {
		t.Errorf("Expected reason 'created', got %q", events[0].Reason)
	}
	if events[2].Extra["albums_removed"] != "1" {
		t.Errorf("cascade counts not recorded: %+v", events[2].Extra)
	}
	if events[4].Error != "bad header" {
		t.Errorf("Expected error 'bad header', got %q", events[4].Error)
	}
}

func TestEventLoggerLevelFiltering(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogSkip("/music/a.mp3", "unchanged")      // debug, filtered
	logger.LogSkip("/music/b.mp3", "shadowed")       // warning
	logger.LogIngest("/music/c.mp3", 1, 0, 0, false) // info
	logger.Close()

	events, err := ReadEvents(logger.Path())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events after filtering, got %d", len(events))
	}
	if events[0].Path != "/music/b.mp3" {
		t.Errorf("Expected shadowed skip first, got %s", events[0].Path)
	}
}

func TestEventLoggerConcurrentWrites(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				logger.Log(&Event{Level: LevelInfo, Event: EventIngest, Path: "/music/x.mp3"})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	events, err := ReadEvents(logger.Path())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != workers*perWorker {
		t.Errorf("Expected %d events, got %d", workers*perWorker, len(events))
	}
}

func TestEventLoggerKeepsTimestamp(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	logger.Log(&Event{Timestamp: ts, Level: LevelInfo, Event: EventPrune})
	logger.Close()

	events, err := ReadEvents(logger.Path())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if !events[0].Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, events[0].Timestamp)
	}
}

func TestNullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.LogIngest("/x.mp3", 1, 1, 1, true); err != nil {
		t.Errorf("NullLogger should ignore events, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger Close returned %v", err)
	}
	if logger.Path() != "" || logger.RunID() != "" {
		t.Error("NullLogger should have no path or run id")
	}
}

func TestReadEventsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("{\"event\":\"ingest\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadEvents(path); err == nil {
		t.Error("Expected an error for a malformed line")
	}
}
