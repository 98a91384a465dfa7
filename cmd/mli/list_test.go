package main

import (
	"errors"
	"testing"

	"github.com/franz/music-index/internal/util"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "-"},
		{-3, "-"},
		{7, "0:07"},
		{245, "4:05"},
		{3600, "1:00:00"},
		{4385, "1:13:05"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestOptInt(t *testing.T) {
	if got := optInt(3, true); got != "3" {
		t.Errorf("optInt(3, true) = %q", got)
	}
	if got := optInt(0, false); got != "-" {
		t.Errorf("optInt(0, false) = %q", got)
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	if err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}

	for _, bad := range []string{"", "abc", "0", "-1"} {
		if _, err := parseID(bad); !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("parseID(%q) error = %v, want ErrInvalidInput", bad, err)
		}
	}
}
