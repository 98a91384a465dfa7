package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTuneForRootsExplicitNAS(t *testing.T) {
	on := true
	cfg := TuneForRoots(nil, &on, 16)

	assert.True(t, cfg.IsNASMode)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Contains(t, cfg.String(), "NAS mode: enabled")

	cfg = TuneForRoots(nil, &on, 1)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestTuneForRootsExplicitLocal(t *testing.T) {
	off := false
	cfg := TuneForRoots([]string{"/mnt/music"}, &off, 8)

	assert.False(t, cfg.IsNASMode)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, DefaultRetryConfig(), cfg.Retry)
	assert.Contains(t, cfg.String(), "disabled")
}

func TestTuneForRootsDefaults(t *testing.T) {
	off := false
	cfg := TuneForRoots(nil, &off, 0)
	assert.Equal(t, 4, cfg.Concurrency)
}
