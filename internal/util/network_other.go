//go:build !linux && !darwin

package util

// detectPlatformNetwork treats every path as local on other platforms
func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	return &NetworkInfo{}, nil
}
