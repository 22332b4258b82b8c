package raster

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"icon-studio/internal/composer/layers"
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Normalization for oksvg
// ============================================================

// unsupportedTags are removed with their subtree.
var unsupportedTags = map[string]bool{
	"image":    true,
	"filter":   true,
	"mask":     true,
	"clipPath": true,
}

var unsupportedAttrs = []string{"filter", "mask", "clip-path"}

// opacityAttr names the opacity attribute paired with a paint attribute.
var opacityAttr = map[string]string{
	"fill":       "fill-opacity",
	"stroke":     "stroke-opacity",
	"stop-color": "stop-opacity",
}

var singleScale = regexp.MustCompile(`scale\(\s*([^\s,()]+)\s*\)`)

// Placement is an embedded raster image found while normalizing, in the
// coordinates of the root viewport.
type Placement struct {
	Href string
	X, Y float64
	W, H float64
	// ClipRadius is the corner radius of a rounded clip rect, -1 if unclipped.
	ClipRadius float64
}

// Normalize returns a copy of root that oksvg draws as intended: style
// declarations become attributes, currentColor is resolved, rgb() and rgba()
// become hex plus opacity, nested svg elements become transformed groups and
// unsupported elements and attributes are dropped.
func Normalize(root *svgtree.Node) *svgtree.Node {
	out, _ := normalize(root)
	return out
}

func normalize(root *svgtree.Node) (*svgtree.Node, []Placement) {
	n := &normalizer{clips: clipRadii(root)}
	out := root.Clone()
	n.visit(out, "#000000", affine{s: 1}, true)
	return out, n.images
}

// affine is a uniform scale followed by a translation.
type affine struct {
	s, tx, ty float64
}

func (a affine) then(s, tx, ty float64) affine {
	return affine{s: a.s * s, tx: a.tx + a.s*tx, ty: a.ty + a.s*ty}
}

type normalizer struct {
	clips  map[string]float64
	images []Placement
}

// visit rewrites n in place. placed is the viewport transform of n as long as
// no transform attribute sits between n and the root.
func (z *normalizer) visit(n *svgtree.Node, color string, placed affine, plain bool) {
	expandStyle(n)

	if c, ok := n.Attr("color"); ok && c != "" && !strings.EqualFold(c, "currentColor") {
		color = c
	}
	for attr := range opacityAttr {
		if v, ok := n.Attr(attr); ok {
			setPaint(n, attr, v, color)
		}
	}

	if t, ok := n.Attr("transform"); ok {
		n.SetAttr("transform", singleScale.ReplaceAllString(t, "scale($1 $1)"))
		plain = false
	}

	kept := n.Children[:0]
	for _, child := range n.Children {
		if child.Kind != svgtree.ElementNode {
			kept = append(kept, child)
			continue
		}
		if child.Tag == "image" {
			if plain {
				z.recordImage(child, placed)
			}
			continue
		}
		if unsupportedTags[child.Tag] {
			continue
		}
		if child.Tag == "svg" {
			_, own := child.Attr("transform")
			transform, s, tx, ty := flattenSVG(child)
			z.visit(child, color, placed.then(s, tx, ty), plain && !own)
			child.SetAttr("transform", transform)
		} else {
			z.visit(child, color, placed, plain)
		}
		kept = append(kept, child)
	}
	n.Children = kept

	for _, attr := range unsupportedAttrs {
		n.DelAttr(attr)
	}
}

func (z *normalizer) recordImage(img *svgtree.Node, placed affine) {
	href, ok := img.Attr("href")
	if !ok {
		href, ok = img.Attr("xlink:href")
	}
	if !ok || !strings.HasPrefix(href, "data:") {
		return
	}

	x := number(img.Attrs["x"], 0)
	y := number(img.Attrs["y"], 0)
	w := number(img.Attrs["width"], 0)
	h := number(img.Attrs["height"], 0)
	if w <= 0 || h <= 0 {
		return
	}

	radius := -1.0
	if id, ok := urlRef(img.Attrs["clip-path"]); ok {
		if r, ok := z.clips[id]; ok {
			radius = r * placed.s
		}
	}

	z.images = append(z.images, Placement{
		Href:       href,
		X:          placed.tx + placed.s*x,
		Y:          placed.ty + placed.s*y,
		W:          placed.s * w,
		H:          placed.s * h,
		ClipRadius: radius,
	})
}

// flattenSVG turns a nested svg into a g and returns the transform to set on
// it once its content is normalized: scale s then translation (tx, ty), aspect
// ratio kept and content centered.
func flattenSVG(n *svgtree.Node) (transform string, s, tx, ty float64) {
	x := number(n.Attrs["x"], 0)
	y := number(n.Attrs["y"], 0)
	s, tx, ty = 1, x, y

	if vb, ok := n.Attr("viewBox"); ok {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ',' || r == ' ' })
		if len(f) == 4 {
			minX, minY := number(f[0], 0), number(f[1], 0)
			vbW, vbH := number(f[2], 0), number(f[3], 0)
			w := number(n.Attrs["width"], vbW)
			h := number(n.Attrs["height"], vbH)
			if vbW > 0 && vbH > 0 {
				s = math.Min(w/vbW, h/vbH)
				tx = x + (w-vbW*s)/2 - minX*s
				ty = y + (h-vbH*s)/2 - minY*s
			}
		}
	}

	transform = fmt.Sprintf("translate(%s %s) scale(%s %s)",
		layers.FormatFloat(tx), layers.FormatFloat(ty), layers.FormatFloat(s), layers.FormatFloat(s))
	if t, ok := n.Attr("transform"); ok {
		transform = singleScale.ReplaceAllString(t, "scale($1 $1)") + " " + transform
	}

	n.Tag = "g"
	for _, attr := range []string{"x", "y", "width", "height", "viewBox", "preserveAspectRatio", "xmlns", "xmlns:xlink", "transform"} {
		n.DelAttr(attr)
	}
	return transform, s, tx, ty
}

// expandStyle moves style declarations into attributes, overriding them.
func expandStyle(n *svgtree.Node) {
	style, ok := n.Attr("style")
	if !ok {
		return
	}
	n.DelAttr("style")
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !found || key == "" {
			continue
		}
		n.SetAttr(key, value)
	}
}

// setPaint resolves currentColor and rewrites functional colors as hex.
func setPaint(n *svgtree.Node, attr, value, color string) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "currentColor") {
		value = color
	}
	hex, alpha, ok := parseFunctional(value)
	if !ok {
		n.SetAttr(attr, value)
		return
	}
	n.SetAttr(attr, hex)
	if alpha < 1 {
		key := opacityAttr[attr]
		alpha *= number(n.Attrs[key], 1)
		n.SetAttr(key, layers.FormatFloat(alpha))
	}
}

// parseFunctional reads rgb(r, g, b) and rgba(r, g, b, a).
func parseFunctional(value string) (hex string, alpha float64, ok bool) {
	lower := strings.ToLower(value)
	var body string
	switch {
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")"):
		body = value[5 : len(value)-1]
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		body = value[4 : len(value)-1]
	default:
		return "", 0, false
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return "", 0, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := channel(parts[i])
		if err != nil {
			return "", 0, false
		}
		ch[i] = v
	}
	alpha = 1
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || math.IsNaN(a) {
			return "", 0, false
		}
		alpha = math.Max(0, math.Min(1, a))
	}
	return fmt.Sprintf("#%02x%02x%02x", ch[0], ch[1], ch[2]), alpha, true
}

func channel(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 255.0 / 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("bad channel %q", s)
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v*scale)))), nil
}

func number(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func urlRef(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "url(#") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	return value[5 : len(value)-1], true
}

// clipRadii maps clipPath ids to the corner radius of their rect.
func clipRadii(root *svgtree.Node) map[string]float64 {
	radii := make(map[string]float64)
	svgtree.Walk(root, func(n *svgtree.Node) bool {
		if !n.IsElement("clipPath") {
			return true
		}
		id, ok := n.Attr("id")
		if !ok {
			return false
		}
		for _, child := range n.Children {
			if child.IsElement("rect") {
				radii[id] = number(child.Attrs["rx"], number(child.Attrs["ry"], 0))
				break
			}
		}
		return false
	})
	return radii
}
