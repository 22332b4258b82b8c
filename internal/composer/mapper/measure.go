package mapper

import (
	"math"
	"strconv"
	"strings"

	"icon-studio/internal/composer/layers"
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Measurement
// ============================================================

// defaultExtent is used for any side that cannot be measured.
const defaultExtent = 24

// Measure returns the icon's own coordinate box: the viewBox when present,
// else the width and height attributes, else 24x24. A blank viewBox counts as
// missing.
func Measure(root *svgtree.Node) layers.Box {
	if viewBox, ok := root.Attr("viewBox"); ok && strings.TrimSpace(viewBox) != "" {
		return parseViewBox(viewBox)
	}

	width, _ := root.Attr("width")
	height, _ := root.Attr("height")
	return layers.Box{
		Width:  parseExtent(width),
		Height: parseExtent(height),
	}
}

func parseViewBox(value string) layers.Box {
	fields := splitNumbers(value)

	box := layers.Box{Width: defaultExtent, Height: defaultExtent}
	if len(fields) > 0 {
		box.MinX = parseOffset(fields[0])
	}
	if len(fields) > 1 {
		box.MinY = parseOffset(fields[1])
	}
	if len(fields) > 2 {
		box.Width = parseExtent(fields[2])
	}
	if len(fields) > 3 {
		box.Height = parseExtent(fields[3])
	}
	return box
}

func splitNumbers(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// parseExtent accepts a positive length with an optional px suffix.
func parseExtent(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "px")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return defaultExtent
	}
	return v
}

func parseOffset(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
