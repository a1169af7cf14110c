package render

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/go-playground/colors.v1"
)

// PaletteSize is the number of entries in a palette, one per quantized level
const PaletteSize = 256

var (
	// ErrInvalidPalette is returned when a palette name or colour stop can't be parsed
	ErrInvalidPalette = errors.New("invalid palette")
)

// Palette maps a quantized value (0-255) to a colour. A nil Palette renders
// grayscale.
type Palette []color.Color

// named palettes, given as colour stops from value 0 to value 255
var named = map[string]string{
	"gray":  "",
	"fire":  "#000000,#5c0a0a,#e8490f,#ffd23f,#ffffff",
	"ocean": "#03045e,#0077b6,#00b4d8,#90e0ef,#caf0f8",
	"ice":   "#003cff,#ffffff",
}

// PaletteNames lists the named palettes in sorted order
func PaletteNames() []string {
	return []string{"fire", "gray", "ice", "ocean"}
}

// ParsePalette accepts either a palette name or a comma separated list of at
// least two colour stops such as "#000,rgb(255,128,0),#fff". The empty string
// and "gray" yield a nil (grayscale) palette.
func ParsePalette(s string) (Palette, error) {
	s = strings.TrimSpace(s)
	if stops, ok := named[strings.ToLower(s)]; ok {
		s = stops
	}
	if s == "" {
		return nil, nil
	}

	parts := splitStops(s)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: need at least two colour stops in %q", ErrInvalidPalette, s)
	}

	stops := make([]colorful.Color, 0, len(parts))
	for _, p := range parts {
		c, err := colors.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPalette, p, err)
		}
		rgba := c.ToRGBA()
		stops = append(stops, colorful.Color{
			R: float64(rgba.R) / 255,
			G: float64(rgba.G) / 255,
			B: float64(rgba.B) / 255,
		})
	}

	return Gradient(stops...), nil
}

// splitStops splits on commas that are not inside rgb(...) parentheses
func splitStops(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Gradient spreads the stops evenly over the palette and blends neighbouring
// stops in Lab space.
func Gradient(stops ...colorful.Color) Palette {
	p := make(Palette, PaletteSize)
	if len(stops) == 0 {
		for i := range p {
			p[i] = color.NRGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 0xff}
		}
		return p
	}
	if len(stops) == 1 {
		for i := range p {
			p[i] = toNRGBA(stops[0])
		}
		return p
	}

	segments := float64(len(stops) - 1)
	for i := range p {
		pos := float64(i) / float64(PaletteSize-1) * segments
		k := int(pos)
		if k >= len(stops)-1 {
			k = len(stops) - 2
		}
		p[i] = toNRGBA(stops[k].BlendLab(stops[k+1], pos-float64(k)))
	}
	return p
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
