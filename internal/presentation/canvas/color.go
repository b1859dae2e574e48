package canvas

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with straight alpha.
type Color struct {
	colorful.Color
	A float64
}

var fallbackColor = colorful.Color{R: 0.62, G: 0.62, B: 0.62}

// Hex parses "#rrggbb" or "#rgb". Unparseable input yields neutral grey.
func Hex(s string) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{Color: fallbackColor, A: 1}
	}
	return Color{Color: c, A: 1}
}

// RGBA builds a color from 8-bit channels.
func RGBA(r, g, b uint8, a float64) Color {
	return Color{
		Color: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		A:     a,
	}
}

// WithAlpha returns c with a replaced alpha.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Over composites c onto an opaque background.
func (c Color) Over(bg Color) Color {
	if c.A >= 1 {
		return Color{Color: c.Color, A: 1}
	}
	if c.A <= 0 {
		return bg
	}
	return Color{Color: bg.Color.BlendRgb(c.Color, c.A).Clamped(), A: 1}
}

// Darken lowers lightness by f (0..1) in Lab space.
func (c Color) Darken(f float64) Color {
	l, a, b := c.Lab()
	return Color{Color: colorful.Lab(l*(1-f), a, b).Clamped(), A: c.A}
}

// CSS renders the color for SVG attributes.
func (c Color) CSS() string {
	if c.A >= 1 {
		return c.Clamped().Hex()
	}
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", r, g, b, c.A)
}

// Palette used by the renderer.
var (
	White       = RGBA(255, 255, 255, 1)
	Background  = RGBA(255, 255, 255, 1)
	GridLine    = RGBA(224, 224, 224, 1)
	HeaderFill  = RGBA(245, 246, 248, 1)
	HeaderText  = RGBA(90, 96, 105, 1)
	LabelText   = RGBA(255, 255, 255, 1)
	MutedText   = RGBA(120, 124, 130, 1)
	HoverBand   = RGBA(33, 150, 243, 0.08)
	TodayLine   = RGBA(244, 81, 30, 1)
	Overdue     = RGBA(229, 57, 53, 1)
	OnTime      = RGBA(67, 160, 71, 1)
	SkeletonBar = RGBA(230, 232, 235, 1)
	Shadow      = RGBA(0, 0, 0, 0.18)
)
