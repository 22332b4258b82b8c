package mapper

import (
	"regexp"
	"strings"
	"unicode"

	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/layers"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Background Compositor
// ============================================================

const (
	BorderClipID = "borderClip"
	Edge3DID     = "edge3D"
	Edge3DBlurID = "edge3DBlur"
)

var svgOpenTag = regexp.MustCompile(`<svg[^>]*>`)

// Compositor merges the rendered background, its decorations and a composed
// icon fragment into the final document.
type Compositor struct {
	log *logging.Logger
}

func NewCompositor() *Compositor {
	return &Compositor{
		log: logging.New("compositor"),
	}
}

// Compose builds the final 512x512 document. backgroundImage is an encoded
// image reference, usually a PNG data URL. The fragment's own root is dropped
// and its children are inlined; its defs are merged into the document defs.
// A fragment that does not parse is inlined as text with its outer svg tags
// cut off.
func (c *Compositor) Compose(bg models.BackgroundOptions, backgroundImage, iconFragment string) (string, error) {
	fragment, err := svgtree.Parse(iconFragment)
	if err != nil {
		c.log.Warn("inlining unparsed icon fragment: %v", err)
	}

	radius := layers.FormatFloat(bg.BorderRadius)
	clipURL := "url(#" + BorderClipID + ")"

	defs := svgtree.NewElement("defs", nil,
		svgtree.NewElement("clipPath", map[string]string{"id": BorderClipID},
			svgtree.NewElement("rect", map[string]string{
				"width":  "512",
				"height": "512",
				"rx":     radius,
				"ry":     radius,
			}),
		),
	)

	doc := svgtree.NewElement("svg", map[string]string{
		"width":       "512",
		"height":      "512",
		"viewBox":     "0 0 512 512",
		"xmlns":       xmlnsSVG,
		"xmlns:xlink": xmlnsXLink,
	}, defs)

	doc.Append(svgtree.NewElement("image", map[string]string{
		"href":      backgroundImage,
		"width":     "512",
		"height":    "512",
		"clip-path": clipURL,
	}))

	if bg.Background3D {
		defs.Append(edge3DDefs(bg.Background3DRotation)...)
		doc.Append(svgtree.NewElement("rect", map[string]string{
			"width":        "512",
			"height":       "512",
			"rx":           radius,
			"ry":           radius,
			"fill":         "none",
			"stroke":       "url(#" + Edge3DID + ")",
			"stroke-width": "20",
			"filter":       "url(#" + Edge3DBlurID + ")",
			"clip-path":    clipURL,
		}))
	}

	if bg.BorderStroke > 0 {
		doc.Append(svgtree.NewElement("rect", map[string]string{
			"width":        "512",
			"height":       "512",
			"rx":           radius,
			"ry":           radius,
			"fill":         "none",
			"stroke":       layers.ParseRGB(bg.BorderColor).RGBA(bg.BorderOpacity / 100),
			"stroke-width": layers.FormatFloat(bg.BorderStroke),
		}))
	}

	if fragment == nil {
		out := svgtree.Serialize(doc)
		return strings.TrimSuffix(out, "</svg>") + stripSVGTags(iconFragment) + "</svg>", nil
	}

	for _, n := range inlineContent(fragment) {
		if n.IsElement("defs") {
			defs.Append(n.Children...)
			continue
		}
		doc.Append(n)
	}

	return svgtree.Serialize(doc), nil
}

// stripSVGTags removes the first svg start tag and a trailing svg end tag.
func stripSVGTags(markup string) string {
	if loc := svgOpenTag.FindStringIndex(markup); loc != nil {
		markup = markup[:loc[0]] + markup[loc[1]:]
	}
	return strings.TrimSuffix(strings.TrimRightFunc(markup, unicode.IsSpace), "</svg>")
}

// inlineContent returns copies of what the fragment draws: the children of an
// svg root, or the root itself otherwise.
func inlineContent(fragment *svgtree.Node) []*svgtree.Node {
	if fragment.IsElement("svg") {
		return svgtree.CloneAll(fragment.Children)
	}
	return []*svgtree.Node{fragment.Clone()}
}

func edge3DDefs(rotation float64) []*svgtree.Node {
	stop := func(offset, color string) *svgtree.Node {
		return svgtree.NewElement("stop", map[string]string{
			"offset": offset,
			"style":  "stop-color:" + color + ";stop-opacity:1",
		})
	}

	gradient := svgtree.NewElement("linearGradient", map[string]string{
		"id":                Edge3DID,
		"x1":                "0%",
		"y1":                "0%",
		"x2":                "100%",
		"y2":                "100%",
		"gradientTransform": "rotate(" + layers.FormatFloat(rotation) + ")",
	},
		stop("0%", "rgba(255,255,255,0.5)"),
		stop("30%", "rgba(255,255,255,0.0)"),
		stop("70%", "rgba(255,255,255,0.0)"),
		stop("100%", "rgba(0,0,0,0.5)"),
	)

	blur := svgtree.NewElement("filter", map[string]string{
		"id":     Edge3DBlurID,
		"x":      "-10%",
		"y":      "-10%",
		"width":  "120%",
		"height": "120%",
	},
		svgtree.NewElement("feGaussianBlur", map[string]string{
			"stdDeviation": "2",
			"result":       "blurred",
		}),
	)

	return []*svgtree.Node{gradient, blur}
}
