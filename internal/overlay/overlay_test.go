package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return img
}

func countColored(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#00FF00")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, c)

	c, err = ParseColor("#11223380")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x11, 0x22, 0x33, 0x80}, c)

	c, err = ParseColor("White")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c)

	_, err = ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("#GGGGGG")
	assert.Error(t, err)
}

func TestStyleValidate(t *testing.T) {
	assert.NoError(t, DefaultStyle().Validate())

	s := DefaultStyle()
	s.Scale = 0
	assert.Error(t, s.Validate())

	s = DefaultStyle()
	s.Thickness = 0
	assert.Error(t, s.Validate())

	s = DefaultStyle()
	s.Color = "nope"
	assert.Error(t, s.Validate())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{FontGoBold, FontGoMono, FontGoRegular}, reg.List())

	face, err := reg.Face(FontGoRegular, 24)
	require.NoError(t, err)
	assert.NoError(t, face.Close())

	_, err = reg.Face("comic-sans", 24)
	assert.Error(t, err)

	reg.Register("missing", "/nonexistent/font.ttf")
	_, err = reg.Face("missing", 24)
	assert.Error(t, err)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	r, err := NewRenderer(DefaultStyle(), nil)
	require.NoError(t, err)
	defer r.Close()

	frame := blankFrame(240, 120)
	out := r.Apply(frame, "fall")

	assert.Zero(t, countColored(frame))
	assert.Greater(t, countColored(out), 0)
	assert.Equal(t, frame.Bounds(), out.Bounds())
}

func TestDrawIsTopLeftAnchored(t *testing.T) {
	style := DefaultStyle()
	style.Position = Position{X: 80, Y: 30}
	r, err := NewRenderer(style, nil)
	require.NoError(t, err)
	defer r.Close()

	frame := blankFrame(200, 100)
	r.Draw(frame, "walk")

	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := frame.RGBAAt(x, y)
			if c.G == 0 {
				continue
			}
			assert.GreaterOrEqual(t, x, 80-style.Thickness, "pixel left of anchor")
			assert.GreaterOrEqual(t, y, 30-style.Thickness, "pixel above anchor")
		}
	}
}

func TestThicknessGrowsStroke(t *testing.T) {
	thin := DefaultStyle()
	thin.Thickness = 1
	thick := DefaultStyle()
	thick.Thickness = 4

	rThin, err := NewRenderer(thin, nil)
	require.NoError(t, err)
	defer rThin.Close()
	rThick, err := NewRenderer(thick, nil)
	require.NoError(t, err)
	defer rThick.Close()

	a := rThin.Apply(blankFrame(240, 120), "standing")
	b := rThick.Apply(blankFrame(240, 120), "standing")
	assert.Greater(t, countColored(b), countColored(a))
}

func TestNoAntiAliasIsBinary(t *testing.T) {
	style := DefaultStyle()
	style.AntiAlias = false
	style.Color = "#FFFFFF"
	r, err := NewRenderer(style, nil)
	require.NoError(t, err)
	defer r.Close()

	out := r.Apply(blankFrame(240, 120), "sitting")
	for i := 0; i < len(out.Pix); i += 4 {
		v := out.Pix[i]
		assert.True(t, v == 0 || v == 0xFF, "intermediate value %d", v)
	}
}

func TestDrawOffFrameIsNoop(t *testing.T) {
	style := DefaultStyle()
	style.Position = Position{X: 500, Y: 500}
	r, err := NewRenderer(style, nil)
	require.NoError(t, err)
	defer r.Close()

	frame := blankFrame(64, 48)
	r.Draw(frame, "lying")
	assert.Zero(t, countColored(frame))
}
