package meta

import (
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/franz/music-index/internal/util"
)

// FFprobeInfo is the subset of ffprobe's JSON output the scanner reads
type FFprobeInfo struct {
	Streams []FFprobeStream `json:"streams"`
	Format  *FFprobeFormat  `json:"format"`
}

// FFprobeStream represents one stream of the file
type FFprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// FFprobeFormat represents container format metadata
type FFprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// RunFFprobe executes ffprobe and parses the JSON output
func RunFFprobe(path string) (*FFprobeInfo, error) {
	if !CheckFFprobeAvailable() {
		return nil, util.ErrNotFound
	}

	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	return ParseFFprobe(output)
}

// ParseFFprobe decodes ffprobe's JSON output
func ParseFFprobe(output []byte) (*FFprobeInfo, error) {
	var info FFprobeInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &info, nil
}

// ProbeDuration returns the playing time of an audio file in whole seconds.
// util.ErrNotFound means ffprobe is not installed.
func ProbeDuration(path string) (int64, error) {
	info, err := RunFFprobe(path)
	if err != nil {
		return 0, err
	}
	return info.DurationSeconds()
}

// DurationSeconds picks the container duration, falling back to the audio streams
func (info *FFprobeInfo) DurationSeconds() (int64, error) {
	candidates := make([]string, 0, len(info.Streams)+1)
	if info.Format != nil {
		candidates = append(candidates, info.Format.Duration)
	}
	for _, stream := range info.Streams {
		if stream.CodecType == "audio" {
			candidates = append(candidates, stream.Duration)
		}
	}

	for _, c := range candidates {
		if c == "" || c == "N/A" {
			continue
		}
		secs, err := strconv.ParseFloat(c, 64)
		if err != nil || secs < 0 {
			continue
		}
		return int64(math.Round(secs)), nil
	}
	return 0, fmt.Errorf("ffprobe reported no duration")
}

// CheckFFprobeAvailable checks if ffprobe is available in PATH
func CheckFFprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}
