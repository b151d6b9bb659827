package thumbnail

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
)

// Resizer produces a bounded JPEG preview of the image at srcPath and
// writes it to dstPath. maxDim caps both axes, aspect ratio preserved.
type Resizer interface {
	Resize(srcPath, dstPath string, maxDim, quality int) error
}

// MagickResizer shells out to ImageMagick's convert binary.
type MagickResizer struct {
	binary string
}

// NewMagickResizer creates a resizer backed by the given convert binary.
// An empty binary name selects "convert".
func NewMagickResizer(binary string) *MagickResizer {
	if binary == "" {
		binary = "convert"
	}
	return &MagickResizer{binary: binary}
}

func (r *MagickResizer) Resize(srcPath, dstPath string, maxDim, quality int) error {
	geometry := fmt.Sprintf("%dx%d>", maxDim, maxDim)

	cmd := exec.Command(r.binary,
		srcPath,
		"-auto-orient",
		"-thumbnail", geometry,
		"-quality", strconv.Itoa(quality),
		"jpeg:"+dstPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("convert failed: %w: %s", err, stderr.String())
	}

	return nil
}

// NewResizer selects a Resizer implementation by backend name.
// "magick" shells out to ImageMagick; anything else resizes in process.
func NewResizer(backend string) Resizer {
	if backend == "magick" {
		return NewMagickResizer("")
	}
	return &InProcessResizer{}
}
