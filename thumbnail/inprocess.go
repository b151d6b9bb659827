package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// InProcessResizer scales images with pure Go, so the service works
// without an external ImageMagick install.
type InProcessResizer struct{}

func (r *InProcessResizer) Resize(srcPath, dstPath string, maxDim, quality int) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read source image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation := imageOrientation(data); orientation != 1 {
		img = correctOrientation(img, orientation)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > maxDim || height > maxDim {
		scale := float64(maxDim) / float64(width)
		if s := float64(maxDim) / float64(height); s < scale {
			scale = s
		}
		newWidth = int(float64(width) * scale)
		newHeight = int(float64(height) * scale)
		if newWidth > maxDim {
			newWidth = maxDim
		}
		if newHeight > maxDim {
			newHeight = maxDim
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := os.WriteFile(dstPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return nil
}

// imageOrientation extracts the EXIF orientation tag, defaulting to 1
// when the image carries no usable EXIF data.
func imageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// correctOrientation rewrites the pixels so the image displays upright
// for EXIF orientations 2 through 8.
func correctOrientation(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var out *image.RGBA
	if orientation >= 5 {
		// Axes swap for transposed orientations
		out = image.NewRGBA(image.Rect(0, 0, height, width))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, width, height))
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var dx, dy int
			switch orientation {
			case 2: // flip horizontal
				dx, dy = width-1-x, y
			case 3: // rotate 180
				dx, dy = width-1-x, height-1-y
			case 4: // flip vertical
				dx, dy = x, height-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 clockwise
				dx, dy = height-1-y, x
			case 7: // transverse
				dx, dy = height-1-y, width-1-x
			case 8: // rotate 90 counter-clockwise
				dx, dy = y, width-1-x
			}
			out.Set(dx, dy, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}

	return out
}
