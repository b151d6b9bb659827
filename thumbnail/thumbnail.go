package thumbnail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alt-text-pipeline/metrics"

	"github.com/apex/log"
)

var validExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Deriver converts raw image bytes into a bounded-size JPEG preview.
type Deriver struct {
	resizer Resizer
	maxDim  int
	quality int
}

// NewDeriver creates a Deriver backed by the given Resizer.
func NewDeriver(resizer Resizer, maxDim, quality int) *Deriver {
	return &Deriver{
		resizer: resizer,
		maxDim:  maxDim,
		quality: quality,
	}
}

// Derive returns preview bytes for the image, best-effort. Any resize
// failure falls back to the original bytes unchanged, so consumers must
// not assume the result is actually small.
func (d *Deriver) Derive(imageData []byte, filename string) []byte {
	thumbnail, err := d.derive(imageData, filename)
	if err != nil {
		metrics.ThumbnailFallbackTotal.Inc()
		log.WithError(err).Warnf("Thumbnail fallback for %q, keeping original bytes", filename)
		return imageData
	}

	log.Debugf("Thumbnail for %q: %d bytes -> %d bytes", filename, len(imageData), len(thumbnail))
	return thumbnail
}

// derive runs the resizer against temporary files. The temp files are
// removed on every path.
func (d *Deriver) derive(imageData []byte, filename string) ([]byte, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !validExtensions[ext] {
		ext = "jpg"
	}

	tempInput, err := os.CreateTemp("", "alttext-in-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp input: %w", err)
	}
	defer os.Remove(tempInput.Name())

	_, err = tempInput.Write(imageData)
	if closeErr := tempInput.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write temp input: %w", err)
	}

	tempOutput, err := os.CreateTemp("", "alttext-out-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp output: %w", err)
	}
	tempOutput.Close()
	defer os.Remove(tempOutput.Name())

	if err := d.resizer.Resize(tempInput.Name(), tempOutput.Name(), d.maxDim, d.quality); err != nil {
		return nil, err
	}

	thumbnail, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	if len(thumbnail) == 0 {
		return nil, fmt.Errorf("resizer produced an empty thumbnail")
	}

	return thumbnail, nil
}
