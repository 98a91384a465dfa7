package util

import (
	"fmt"
)

// FileStat is the part of a file's metadata the scanner compares between runs
type FileStat struct {
	Size      int64
	MtimeUnix int64
}

// StatFile stats path with the given retry policy
func StatFile(path string, cfg *RetryConfig) (FileStat, error) {
	info, err := RetryableStat(path, cfg)
	if err != nil {
		return FileStat{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return FileStat{}, fmt.Errorf("%w: %s is not a regular file", ErrUnsupported, path)
	}
	return FileStat{Size: info.Size(), MtimeUnix: info.ModTime().Unix()}, nil
}
