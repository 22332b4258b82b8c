package layers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================
// Color decomposition
// ============================================================

// RGB holds channels parsed from a #RRGGBB string. Each channel takes the
// leading hex digits of its two-character slot, so "red" reads as 237 for R.
// A slot with no hex digits is NaN and renders as "NaN"; callers validate
// colors before they get here.
type RGB struct {
	R, G, B float64
}

// ParseRGB reads the hex pairs at offsets 1-3, 3-5 and 5-7.
func ParseRGB(color string) RGB {
	return RGB{
		R: hexChannel(color, 1),
		G: hexChannel(color, 3),
		B: hexChannel(color, 5),
	}
}

func hexChannel(color string, start int) float64 {
	if start >= len(color) {
		return math.NaN()
	}
	slot := strings.TrimLeftFunc(color[start:min(start+2, len(color))], unicode.IsSpace)
	sign := 1.0
	switch {
	case strings.HasPrefix(slot, "-"):
		sign, slot = -1, slot[1:]
	case strings.HasPrefix(slot, "+"):
		slot = slot[1:]
	}
	end := 0
	for end < len(slot) && isHexDigit(slot[end]) {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseUint(slot[:end], 16, 8)
	if err != nil {
		return math.NaN()
	}
	return sign * float64(v)
}

func isHexDigit(b byte) bool {
	return '0' <= b && b <= '9' || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

// Lighten adds d to each channel, clamped to 255.
func (c RGB) Lighten(d float64) RGB {
	return RGB{
		R: math.Min(255, c.R+d),
		G: math.Min(255, c.G+d),
		B: math.Min(255, c.B+d),
	}
}

// Scale multiplies each channel by f and floors the result.
func (c RGB) Scale(f float64) RGB {
	return RGB{
		R: math.Floor(c.R * f),
		G: math.Floor(c.G * f),
		B: math.Floor(c.B * f),
	}
}

// RGBA formats the color as an rgba() paint.
func (c RGB) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%s, %s, %s, %s)",
		FormatFloat(c.R), FormatFloat(c.G), FormatFloat(c.B), FormatFloat(alpha))
}

// FormatFloat prints the shortest decimal form of val.
func FormatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
