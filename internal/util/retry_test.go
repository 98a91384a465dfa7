package util

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "EAGAIN", err: syscall.EAGAIN, expected: true},
		{name: "EIO", err: syscall.EIO, expected: true},
		{name: "ENOENT (not retryable)", err: syscall.ENOENT, expected: false},
		{name: "EPERM (not retryable)", err: syscall.EPERM, expected: false},
		{name: "timeout in message", err: errors.New("read tcp: i/o timeout"), expected: true},
		{name: "generic error", err: errors.New("invalid argument"), expected: false},
		{
			name:     "PathError with ETIMEDOUT",
			err:      &os.PathError{Op: "open", Path: "/music/a.flac", Err: syscall.ETIMEDOUT},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}

	attempts := 0
	got, err := RetryWithBackoff(cfg, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, syscall.EAGAIN
		}
		return 42, nil
	}, "flaky")

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableFailsFast(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	attempts := 0
	_, err := RetryWithBackoff(cfg, func() (struct{}, error) {
		attempts++
		return struct{}{}, syscall.ENOENT
	}, "missing")

	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	_, err := RetryWithBackoff(cfg, func() (int, error) {
		return 0, syscall.EIO
	}, "broken")

	if !errors.Is(err, syscall.EIO) {
		t.Fatalf("expected wrapped EIO, got %v", err)
	}
}

func TestRetryableOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := RetryableOpen(path, nil)
	if err != nil {
		t.Fatalf("RetryableOpen failed: %v", err)
	}
	f.Close()

	if _, err := RetryableStat(filepath.Join(t.TempDir(), "missing.mp3"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
