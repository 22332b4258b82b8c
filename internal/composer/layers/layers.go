package layers

import (
	"fmt"
	"math"

	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Layer Synthesizer
// ============================================================

// Canvas is the side of the square artwork every layer is fitted into.
const Canvas = 512

const (
	GlassGradientID     = "liquidGlass_stroke"
	GlassConnectivityID = "liquidGlass_connectivity"
	GlassBlurID         = "liquidGlass_blur"
)

type glowTier struct {
	alpha   float64
	width   string
	filter  string
	opacity string
}

// glowTiers are drawn widest first; the last, narrowest tier gives the crisp
// edge so its opacity drops again.
var glowTiers = []glowTier{
	{alpha: 0.08, width: "24", filter: "glassBlur5", opacity: "0.15"},
	{alpha: 0.12, width: "16", filter: "glassBlur4", opacity: "0.2"},
	{alpha: 0.15, width: "10", filter: "glassBlur3", opacity: "0.25"},
	{alpha: 0.25, width: "6", filter: "glassBlur2", opacity: "0.4"},
	{alpha: 0.15, width: "4", filter: "glassBlur1", opacity: "0.25"},
}

type blurFilter struct {
	id     string
	size   string
	offset string
	blur   string
	result string
}

var glowFilters = []blurFilter{
	{id: "glassBlur1", size: "400%", offset: "-100%", blur: "2", result: "blur1"},
	{id: "glassBlur2", size: "500%", offset: "-150%", blur: "4", result: "blur2"},
	{id: "glassBlur3", size: "600%", offset: "-200%", blur: "6", result: "blur3"},
	{id: "glassBlur4", size: "800%", offset: "-300%", blur: "12", result: "blur4"},
	{id: "glassBlur5", size: "1200%", offset: "-500%", blur: "30", result: "blur5"},
}

// paint returns the group attributes for a layer painted with the given
// paint server or color.
func paint(style IconStyle, value, strokeWidth string) map[string]string {
	if style == Filled {
		return map[string]string{
			"fill":   value,
			"stroke": "none",
		}
	}
	return map[string]string{
		"fill":            "none",
		"stroke":          value,
		"stroke-width":    strokeWidth,
		"stroke-linecap":  "round",
		"stroke-linejoin": "round",
	}
}

// FlatLayer paints every element with the icon color.
func FlatLayer(elements []*svgtree.Node, color string, style IconStyle) *svgtree.Node {
	return svgtree.NewElement("g", paint(style, color, "1.5"), svgtree.CloneAll(elements)...)
}

// GlassLayers returns the gradient-painted body and the lighter rim drawn on
// top of it. The body references GlassGradientID, see GlassDefs.
func GlassLayers(elements []*svgtree.Node, color string, style IconStyle) []*svgtree.Node {
	rim := ParseRGB(color).Lighten(20).RGBA(0.6)

	main := svgtree.NewElement("g", paint(style, "url(#"+GlassGradientID+")", "1.75"),
		svgtree.CloneAll(elements)...)

	secondaryAttrs := paint(style, rim, "1.5")
	secondaryAttrs["opacity"] = "0.9"
	secondary := svgtree.NewElement("g", secondaryAttrs, svgtree.CloneAll(elements)...)

	return []*svgtree.Node{main, secondary}
}

// GlowLayers returns five blurred copies of the elements, widest first.
func GlowLayers(elements []*svgtree.Node, color string, style IconStyle) []*svgtree.Node {
	rgb := ParseRGB(color)
	out := make([]*svgtree.Node, 0, len(glowTiers))
	for _, tier := range glowTiers {
		attrs := paint(style, rgb.RGBA(tier.alpha), tier.width)
		attrs["filter"] = "url(#" + tier.filter + ")"
		attrs["opacity"] = tier.opacity
		out = append(out, svgtree.NewElement("g", attrs, svgtree.CloneAll(elements)...))
	}
	return out
}

// GlowFilters returns the blur filters referenced by GlowLayers.
func GlowFilters() []*svgtree.Node {
	out := make([]*svgtree.Node, 0, len(glowFilters))
	for _, f := range glowFilters {
		blur := svgtree.NewElement("feGaussianBlur", map[string]string{
			"stdDeviation": f.blur,
			"result":       f.result,
		})
		out = append(out, svgtree.NewElement("filter", map[string]string{
			"id":     f.id,
			"x":      f.offset,
			"y":      f.offset,
			"width":  f.size,
			"height": f.size,
		}, blur))
	}
	return out
}

// GlassDefs returns the gradient and filters used by GlassLayers.
func GlassDefs(color string) []*svgtree.Node {
	rgb := ParseRGB(color)

	stop := func(offset, stopColor string) *svgtree.Node {
		return svgtree.NewElement("stop", map[string]string{
			"offset":     offset,
			"stop-color": stopColor,
		})
	}

	gradient := svgtree.NewElement("linearGradient", map[string]string{
		"id":            GlassGradientID,
		"x1":            "0%",
		"y1":            "0%",
		"x2":            "0%",
		"y2":            "100%",
		"gradientUnits": "objectBoundingBox",
	},
		stop("0%", rgb.Lighten(80).RGBA(0.9)),
		stop("30%", rgb.Lighten(40).RGBA(0.8)),
		stop("70%", rgb.RGBA(0.7)),
		stop("100%", rgb.Scale(0.4).RGBA(0.9)),
	)

	connectivity := svgtree.NewElement("filter", map[string]string{
		"id":     GlassConnectivityID,
		"x":      "-20%",
		"y":      "-20%",
		"width":  "140%",
		"height": "140%",
	},
		svgtree.NewElement("feMorphology", map[string]string{
			"operator": "dilate",
			"radius":   "0.5",
			"result":   "expanded",
		}),
		svgtree.NewElement("feGaussianBlur", map[string]string{
			"stdDeviation": "0.8",
			"result":       "blurred",
		}),
		svgtree.NewElement("feComposite", map[string]string{
			"in":       "SourceGraphic",
			"in2":      "blurred",
			"operator": "over",
			"result":   "connected",
		}),
	)

	blur := svgtree.NewElement("filter", map[string]string{
		"id":     GlassBlurID,
		"x":      "-50%",
		"y":      "-50%",
		"width":  "200%",
		"height": "200%",
	},
		svgtree.NewElement("feGaussianBlur", map[string]string{
			"stdDeviation": "1.2",
			"result":       "blurred",
		}),
	)

	return []*svgtree.Node{gradient, connectivity, blur}
}

// Box is the icon's own coordinate space, usually its viewBox.
type Box struct {
	MinX, MinY    float64
	Width, Height float64
}

// Scale returns the factor fitting the box's larger side into size.
func (b Box) Scale(size float64) float64 {
	return size / math.Max(b.Width, b.Height)
}

// TransformWrapper centers the box on the canvas, offset by (offsetX, offsetY),
// and scales its larger side to size.
func TransformWrapper(box Box, size, offsetX, offsetY float64, children ...*svgtree.Node) *svgtree.Node {
	inner := svgtree.NewElement("g", map[string]string{
		"transform": fmt.Sprintf("scale(%s) translate(%s, %s)",
			FormatFloat(box.Scale(size)),
			FormatFloat(-(box.MinX + box.Width/2)),
			FormatFloat(-(box.MinY + box.Height/2))),
	}, children...)

	return svgtree.NewElement("g", map[string]string{
		"transform": fmt.Sprintf("translate(%s, %s)",
			FormatFloat(Canvas/2+offsetX),
			FormatFloat(Canvas/2+offsetY)),
	}, inner)
}
