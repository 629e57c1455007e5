// Package overlay burns label text into decoded frames.
package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Position is the top-left anchor of the text box, in frame pixels.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Style is the fixed styling applied to every label.
type Style struct {
	Font      string   `yaml:"font"`
	Scale     float64  `yaml:"scale"`
	Color     string   `yaml:"color"`
	Thickness int      `yaml:"thickness"`
	AntiAlias bool     `yaml:"anti_alias"`
	Position  Position `yaml:"position"`
}

// BaseFontPx is the glyph size at Scale 1.0.
const BaseFontPx = 24.0

// DefaultStyle returns the styling used when nothing is configured
func DefaultStyle() Style {
	return Style{
		Font:      FontGoMono,
		Scale:     1.0,
		Color:     "#FFFFFF",
		Thickness: 2,
		AntiAlias: true,
		Position:  Position{X: 50, Y: 50},
	}
}

// Validate checks the style can be rendered
func (s Style) Validate() error {
	if s.Font == "" {
		return fmt.Errorf("font is required")
	}
	if s.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", s.Scale)
	}
	if s.Thickness < 1 {
		return fmt.Errorf("thickness must be at least 1, got %d", s.Thickness)
	}
	if _, err := ParseColor(s.Color); err != nil {
		return err
	}
	return nil
}

var namedColors = map[string]color.NRGBA{
	"white":  {255, 255, 255, 255},
	"black":  {0, 0, 0, 255},
	"red":    {255, 0, 0, 255},
	"green":  {0, 255, 0, 255},
	"blue":   {0, 0, 255, 255},
	"yellow": {255, 255, 0, 255},
}

// ParseColor accepts "#RRGGBB", "#RRGGBBAA" or a basic color name. Alpha is
// not premultiplied.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
