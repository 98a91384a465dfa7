package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NetworkInfo describes the filesystem a library root lives on
type NetworkInfo struct {
	IsNetwork bool   // Whether the filesystem is network-mounted
	Protocol  string // Filesystem type (nfs, cifs, smbfs ...) or empty if local
	MountPath string // Mount point of the filesystem
}

// Filesystem type names that mean a remote mount
var networkFSTypes = []string{
	"nfs", "cifs", "smb", "smbfs", "smb2", "ncpfs", "afpfs", "webdav",
	"fuse.sshfs", "fuse.rclone", "osxfuse",
}

func isNetworkFSType(name string) bool {
	name = strings.ToLower(name)
	for _, t := range networkFSTypes {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// DetectNetworkFilesystem checks if a path is on a network-mounted filesystem
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", absPath, err)
	}

	return detectPlatformNetwork(absPath)
}

// IsNetworkPath checks if a path is on a network filesystem (convenience function)
func IsNetworkPath(path string) bool {
	info, err := DetectNetworkFilesystem(path)
	if err != nil {
		return false
	}
	return info.IsNetwork
}
