// Package render draws limit plots, best-region maps and HTML grid views.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Colors used by the limit plot.
var (
	BandColor     = color.RGBA{R: 0xff, G: 0xe9, B: 0x38, A: 0xff}
	ExpectedColor = color.RGBA{R: 0x28, G: 0x37, B: 0x3c, A: 0xff}
	ObservedColor = color.RGBA{R: 0xaa, G: 0x00, B: 0x00, A: 0xff}
	LineColor     = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	TextColor     = color.Black
)

var (
	dashed = []vg.Length{vg.Points(6), vg.Points(3)}
	dotted = []vg.Length{vg.Points(1.5), vg.Points(2)}
)

// ParseHexColor parses "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Glyph maps a marker name to its glyph shape. Unknown names draw circles.
func Glyph(marker string) draw.GlyphDrawer {
	switch marker {
	case "square":
		return draw.BoxGlyph{}
	case "triangle":
		return draw.TriangleGlyph{}
	}
	return draw.CircleGlyph{}
}
