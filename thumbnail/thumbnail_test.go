package thumbnail

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingResizer simulates a missing or broken external tool
type failingResizer struct {
	calls int
}

func (r *failingResizer) Resize(srcPath, dstPath string, maxDim, quality int) error {
	r.calls++
	return errors.New("resize tool unavailable")
}

// recordingResizer captures the paths it was handed and writes a fixed payload
type recordingResizer struct {
	srcPath string
	dstPath string
	output  []byte
}

func (r *recordingResizer) Resize(srcPath, dstPath string, maxDim, quality int) error {
	r.srcPath = srcPath
	r.dstPath = dstPath
	return os.WriteFile(dstPath, r.output, 0644)
}

func testImageJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8((x + y) % 256), G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testImagePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDeriveFallsBackWhenResizerFails(t *testing.T) {
	resizer := &failingResizer{}
	deriver := NewDeriver(resizer, 200, 80)

	original := testImageJPEG(t, 400, 300)
	got := deriver.Derive(original, "photo.jpg")

	if resizer.calls != 1 {
		t.Errorf("resizer called %d times, want 1", resizer.calls)
	}
	if len(got) == 0 {
		t.Fatal("Derive returned empty bytes on resizer failure")
	}
	if !bytes.Equal(got, original) {
		t.Error("fallback did not return the original bytes unchanged")
	}
}

func TestDeriveCleansUpTempFiles(t *testing.T) {
	resizer := &recordingResizer{output: []byte("thumbnail-bytes")}
	deriver := NewDeriver(resizer, 200, 80)

	deriver.Derive(testImagePNG(t, 10, 10), "pic.png")

	if resizer.srcPath == "" || resizer.dstPath == "" {
		t.Fatal("resizer was not invoked with temp paths")
	}
	if _, err := os.Stat(resizer.srcPath); !os.IsNotExist(err) {
		t.Errorf("temp input %s was not removed", resizer.srcPath)
	}
	if _, err := os.Stat(resizer.dstPath); !os.IsNotExist(err) {
		t.Errorf("temp output %s was not removed", resizer.dstPath)
	}
}

func TestDeriveTempFilesRemovedOnFailure(t *testing.T) {
	resizer := &recordingResizer{output: nil} // writes an empty file, treated as failure
	deriver := NewDeriver(resizer, 200, 80)

	original := testImagePNG(t, 10, 10)
	got := deriver.Derive(original, "pic.png")

	if !bytes.Equal(got, original) {
		t.Error("empty resizer output should fall back to original bytes")
	}
	if _, err := os.Stat(resizer.srcPath); !os.IsNotExist(err) {
		t.Errorf("temp input %s was not removed", resizer.srcPath)
	}
	if _, err := os.Stat(resizer.dstPath); !os.IsNotExist(err) {
		t.Errorf("temp output %s was not removed", resizer.dstPath)
	}
}

func TestDeriveExtensionHint(t *testing.T) {
	testCases := []struct {
		filename string
		wantExt  string
	}{
		{"photo.JPG", ".jpg"},
		{"photo.jpeg", ".jpeg"},
		{"icon.png", ".png"},
		{"anim.gif", ".gif"},
		{"modern.webp", ".webp"},
		{"noext", ".jpg"},
		{"weird.tiff", ".jpg"},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			resizer := &recordingResizer{output: []byte("x")}
			deriver := NewDeriver(resizer, 200, 80)
			deriver.Derive([]byte("payload"), tc.filename)

			if got := strings.ToLower(filepath.Ext(resizer.srcPath)); got != tc.wantExt {
				t.Errorf("temp input extension = %s, want %s", got, tc.wantExt)
			}
		})
	}
}

func TestInProcessResizerBoundsDimensions(t *testing.T) {
	deriver := NewDeriver(&InProcessResizer{}, 200, 80)

	thumb := deriver.Derive(testImageJPEG(t, 2000, 1500), "big.jpg")

	img, format, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %s, want jpeg", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() > 200 || bounds.Dy() > 200 {
		t.Errorf("thumbnail %dx%d exceeds 200px bound", bounds.Dx(), bounds.Dy())
	}

	// Aspect ratio is roughly preserved (2000x1500 -> 200x150)
	if bounds.Dx() != 200 || bounds.Dy() != 150 {
		t.Errorf("thumbnail %dx%d, want 200x150", bounds.Dx(), bounds.Dy())
	}
}

func TestInProcessResizerSmallImageRecoded(t *testing.T) {
	deriver := NewDeriver(&InProcessResizer{}, 200, 80)

	// Already within bounds: still re-encoded into the canonical format
	thumb := deriver.Derive(testImagePNG(t, 64, 48), "small.png")

	img, format, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %s, want jpeg", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("thumbnail %dx%d, want 64x48", bounds.Dx(), bounds.Dy())
	}
}

func TestInProcessResizerRejectsGarbage(t *testing.T) {
	deriver := NewDeriver(&InProcessResizer{}, 200, 80)

	original := []byte("this is not an image")
	got := deriver.Derive(original, "junk.png")

	if !bytes.Equal(got, original) {
		t.Error("undecodable input should fall back to original bytes")
	}
}

func TestNewResizerSelection(t *testing.T) {
	if _, ok := NewResizer("magick").(*MagickResizer); !ok {
		t.Error(`NewResizer("magick") did not return a MagickResizer`)
	}
	if _, ok := NewResizer("inprocess").(*InProcessResizer); !ok {
		t.Error(`NewResizer("inprocess") did not return an InProcessResizer`)
	}
	if _, ok := NewResizer("").(*InProcessResizer); !ok {
		t.Error(`NewResizer("") did not default to an InProcessResizer`)
	}
}
