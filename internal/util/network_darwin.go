//go:build darwin

package util

import (
	"strings"
	"syscall"
)

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return info, nil
	}

	fsType := strings.ToLower(cString(stat.Fstypename[:]))
	if isNetworkFSType(fsType) {
		info.IsNetwork = true
		info.Protocol = fsType
		info.MountPath = cString(stat.Mntonname[:])
	}
	return info, nil
}

// cString converts a NUL-terminated int8 array to a Go string
func cString(arr []int8) string {
	b := make([]byte, 0, len(arr))
	for _, c := range arr {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}
