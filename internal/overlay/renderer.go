package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer draws text with a fixed Style. Not safe for concurrent use: the
// underlying font face caches glyphs.
type Renderer struct {
	style  Style
	face   font.Face
	color  color.NRGBA
	ascent int
}

// NewRenderer creates a renderer for style, loading its font from reg
func NewRenderer(style Style, reg *Registry) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overlay style: %w", err)
	}
	if reg == nil {
		reg = NewRegistry()
	}

	c, err := ParseColor(style.Color)
	if err != nil {
		return nil, err
	}

	face, err := reg.Face(style.Font, style.Scale*BaseFontPx)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		style:  style,
		face:   face,
		color:  c,
		ascent: face.Metrics().Ascent.Ceil(),
	}, nil
}

// Style returns the renderer's styling
func (r *Renderer) Style() Style {
	return r.style
}

// Apply returns a copy of frame with text burned in at the style position.
func (r *Renderer) Apply(frame *image.RGBA, text string) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Rect, frame, out.Rect.Min, draw.Src)
	r.Draw(out, text)
	return out
}

// Draw burns text into dst in place. Text running past the frame edge is clipped.
func (r *Renderer) Draw(dst *image.RGBA, text string) {
	if text == "" {
		return
	}

	origin := fixed.P(dst.Rect.Min.X+r.style.Position.X, dst.Rect.Min.Y+r.style.Position.Y+r.ascent)
	bounds, _ := font.BoundString(r.face, text)
	radius := r.style.Thickness - 1

	box := image.Rect(
		(origin.X+bounds.Min.X).Floor()-radius,
		(origin.Y+bounds.Min.Y).Floor()-radius,
		(origin.X+bounds.Max.X).Ceil()+radius,
		(origin.Y+bounds.Max.Y).Ceil()+radius,
	)
	if box.Intersect(dst.Bounds()).Empty() {
		return
	}

	glyphs := image.NewAlpha(box)
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: r.face,
		Dot:  origin,
	}
	d.DrawString(text)

	mask := dilate(glyphs, radius)
	if !r.style.AntiAlias {
		binarize(mask)
	}

	clip := box.Intersect(dst.Bounds())
	draw.DrawMask(dst, clip, image.NewUniform(r.color), image.Point{}, mask, clip.Min, draw.Over)
}

// Close releases the font face
func (r *Renderer) Close() error {
	return r.face.Close()
}

// dilate grows the mask by radius pixels using a disc kernel.
func dilate(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		return src
	}

	b := src.Rect
	dst := image.NewAlpha(b)
	r2 := radius * radius
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			for dy := -radius; dy <= radius && best < 0xFF; dy++ {
				yy := y + dy
				if yy < b.Min.Y || yy >= b.Max.Y {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx < b.Min.X || xx >= b.Max.X || dx*dx+dy*dy > r2 {
						continue
					}
					if a := src.Pix[src.PixOffset(xx, yy)]; a > best {
						best = a
					}
				}
			}
			dst.Pix[dst.PixOffset(x, y)] = best
		}
	}
	return dst
}

func binarize(m *image.Alpha) {
	for i, a := range m.Pix {
		if a >= 0x80 {
			m.Pix[i] = 0xFF
		} else {
			m.Pix[i] = 0
		}
	}
}
