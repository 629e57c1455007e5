package preview

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestNewDefaults(t *testing.T) {
	w := New(0, 0)
	assert.Equal(t, DefaultWidth, w.Width)
	assert.Equal(t, DefaultQuality, w.Quality)

	w = New(100, 150)
	assert.Equal(t, 100, w.Width)
	assert.Equal(t, DefaultQuality, w.Quality)
}

func TestThumbnailKeepsAspect(t *testing.T) {
	w := New(160, 80)

	thumb := w.Thumbnail(solidFrame(640, 480))
	assert.Equal(t, 160, thumb.Bounds().Dx())
	assert.Equal(t, 120, thumb.Bounds().Dy())

	small := solidFrame(100, 50)
	assert.Same(t, small, w.Thumbnail(small))
}

func TestWritePreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "s01_cam1_fall.jpg")

	w := New(64, 90)
	require.NoError(t, w.WritePreview(path, solidFrame(128, 96)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r, g, _, _ := img.At(32, 24).RGBA()
	assert.Greater(t, r>>8, uint32(150))
	assert.Less(t, g>>8, uint32(100))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWritePreviewNilFrame(t *testing.T) {
	w := New(0, 0)
	assert.Error(t, w.WritePreview(filepath.Join(t.TempDir(), "x.jpg"), nil))
}
