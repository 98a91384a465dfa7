//go:build linux

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procMounts = `/dev/sda1 / ext4 rw,relatime 0 0
nas:/export/music /mnt/music nfs4 rw,vers=4.2 0 0
//nas/media /mnt/musicbox cifs rw 0 0
tmpfs /tmp tmpfs rw 0 0
`

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(procMounts + "garbage\n"))
	require.NoError(t, err)
	require.Len(t, mounts, 4)
	assert.Equal(t, mount{Point: "/mnt/music", FSType: "nfs4"}, mounts[1])
}

func TestMountFor(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(procMounts))
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"/mnt/music/Air/Moon Safari", "/mnt/music"},
		{"/mnt/music", "/mnt/music"},
		{"/mnt/musicbox/x", "/mnt/musicbox"},
		{"/home/me/music", "/"},
	}
	for _, tt := range tests {
		m, ok := mountFor(tt.path, mounts)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.want, m.Point, tt.path)
	}
}
