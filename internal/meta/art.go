package meta

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	// Embedded pictures are not always JPEG or PNG
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/franz/music-index/internal/util"
)

const (
	// Full-size art is kept as-is up to this edge length, otherwise downscaled
	maxArtEdge = 1024
	// Thumbnails fit inside a square of this size
	thumbEdge   = 70
	artJPEGQual = 70
)

var folderArtNames = []string{"folder", "cover", "front"}
var folderArtExts = []string{".jpg", ".jpeg", ".png"}

// ProcessArt turns embedded or folder art into the stored pair: the full
// image (original bytes when small enough, else a JPEG at most 1024px on
// its long edge) and a PNG thumbnail at most 70px on its long edge.
func ProcessArt(data []byte) (full, thumb []byte, err error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	small := resize.Thumbnail(thumbEdge, thumbEdge, img, resize.Lanczos3)
	if err := png.Encode(&buf, small); err != nil {
		return nil, nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	thumb = buf.Bytes()

	bounds := img.Bounds()
	if bounds.Dx() <= maxArtEdge && bounds.Dy() <= maxArtEdge {
		return data, thumb, nil
	}

	var fullBuf bytes.Buffer
	scaled := resize.Thumbnail(maxArtEdge, maxArtEdge, img, resize.Lanczos3)
	if err := jpeg.Encode(&fullBuf, scaled, &jpeg.Options{Quality: artJPEGQual}); err != nil {
		return nil, nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return fullBuf.Bytes(), thumb, nil
}

// FolderArt returns the bytes of the first folder/cover/front image in dir,
// matched case-insensitively, or nil when there is none.
func FolderArt(dir string) []byte {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			byName[strings.ToLower(e.Name())] = e.Name()
		}
	}

	for _, base := range folderArtNames {
		for _, ext := range folderArtExts {
			name, ok := byName[base+ext]
			if !ok {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				util.DebugLog("Failed to read folder art %s: %v", name, err)
				continue
			}
			return data
		}
	}
	return nil
}
