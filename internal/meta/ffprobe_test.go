package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{
			name:  "container duration",
			input: `{"format": {"format_name": "flac", "duration": "245.733000"}}`,
			want:  246,
		},
		{
			name: "stream fallback",
			input: `{"format": {"duration": "N/A"}, "streams": [
				{"codec_type": "video", "duration": "1.0"},
				{"codec_type": "audio", "codec_name": "mp3", "duration": "180.4"}
			]}`,
			want: 180,
		},
		{
			name:    "no duration",
			input:   `{"streams": [{"codec_type": "audio"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseFFprobe([]byte(tt.input))
			require.NoError(t, err)

			got, err := info.DurationSeconds()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFFprobeRejectsGarbage(t *testing.T) {
	_, err := ParseFFprobe([]byte("not json"))
	assert.Error(t, err)
}

func TestProbeDurationWithFFprobe(t *testing.T) {
	if !CheckFFprobeAvailable() {
		t.Skip("ffprobe not available")
	}

	_, err := ProbeDuration("/nonexistent/file.mp3")
	assert.Error(t, err)
}
