//go:build linux

package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Kernel superblock magic numbers of remote filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0x517b:     "smb",
	0xfe534d42: "smb2",
	0x564c:     "ncp",
}

// mount is one /proc/mounts line
type mount struct {
	Point  string
	FSType string
}

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err == nil {
		if proto, ok := networkMagic[uint32(stat.Type)]; ok {
			info.IsNetwork = true
			info.Protocol = proto
		}
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		// The magic number check has to do
		return info, nil
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}

	if m, ok := mountFor(path, mounts); ok {
		info.MountPath = m.Point
		if isNetworkFSType(m.FSType) {
			info.IsNetwork = true
			info.Protocol = strings.ToLower(m.FSType)
		}
	}

	return info, nil
}

// parseMounts reads the "device mountpoint fstype ..." lines of /proc/mounts
func parseMounts(r io.Reader) ([]mount, error) {
	var mounts []mount
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, mount{Point: fields[1], FSType: fields[2]})
	}
	return mounts, scanner.Err()
}

// mountFor picks the deepest mount point containing path
func mountFor(path string, mounts []mount) (mount, bool) {
	var best mount
	found := false
	for _, m := range mounts {
		if !pathWithin(path, m.Point) {
			continue
		}
		if !found || len(m.Point) > len(best.Point) {
			best, found = m, true
		}
	}
	return best, found
}

func pathWithin(path, dir string) bool {
	if dir == "/" || path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
