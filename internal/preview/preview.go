// Package preview saves downscaled JPEG stills of annotated frames.
package preview

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

const (
	DefaultWidth   = 320
	DefaultQuality = 85
)

// Writer encodes frames as JPEG thumbnails no wider than Width
type Writer struct {
	Width   int
	Quality int
}

// New creates a preview writer, filling zero values with defaults
func New(width, quality int) *Writer {
	if width <= 0 {
		width = DefaultWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Writer{Width: width, Quality: quality}
}

// Thumbnail scales img down to the writer width, keeping aspect ratio.
// Images already narrow enough are returned as is.
func (w *Writer) Thumbnail(img image.Image) image.Image {
	if w.Width <= 0 || img.Bounds().Dx() <= w.Width {
		return img
	}
	return resize.Resize(uint(w.Width), 0, img, resize.Bilinear)
}

// WritePreview writes a thumbnail of frame to path, replacing any existing file
func (w *Writer) WritePreview(path string, frame *image.RGBA) error {
	if frame == nil {
		return fmt.Errorf("nil frame")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preview dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preview-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, w.Thumbnail(frame), &jpeg.Options{Quality: w.Quality}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}
