package mapper

import (
	"fmt"
	"math"

	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/layers"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/svgtree"
)

const (
	xmlnsSVG   = "http://www.w3.org/2000/svg"
	xmlnsXLink = "http://www.w3.org/1999/xlink"
)

// ============================================================
// Composition states
// ============================================================

type State uint8

const (
	StateStart State = iota
	StateParsed
	StateMeasured
	StateClassified
	StateShellBuilt
	StateDefsAugmented
	StateLayersAttached
	StateSerialized
	StateFailed
)

var stateNames = [...]string{
	StateStart:          "start",
	StateParsed:         "parsed",
	StateMeasured:       "measured",
	StateClassified:     "classified",
	StateShellBuilt:     "shell-built",
	StateDefsAugmented:  "defs-augmented",
	StateLayersAttached: "layers-attached",
	StateSerialized:     "serialized",
	StateFailed:         "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// Result is the outcome of one composition.
type Result struct {
	Markup string
	// Trace lists the states visited, in order.
	Trace []State
	Style layers.IconStyle
	// Fallback is set when the source could not be parsed and Markup is the
	// source itself.
	Fallback bool
}

// ============================================================
// Composer
// ============================================================

// Composer rebuilds an icon's markup onto the 512 canvas. It holds no state
// between calls and is safe for concurrent use.
type Composer struct {
	log *logging.Logger
}

func NewComposer() *Composer {
	return &Composer{
		log: logging.New("composer"),
	}
}

// Compose returns the composed fragment, or source unchanged when it cannot
// be parsed.
func (c *Composer) Compose(source string, opts models.RenderOptions) string {
	return c.Run(source, opts).Markup
}

// Run composes source and reports the states it went through.
func (c *Composer) Run(source string, opts models.RenderOptions) Result {
	res := Result{Trace: []State{StateStart}}
	step := func(s State) {
		res.Trace = append(res.Trace, s)
		c.log.Debug("Compose", "%s", s)
	}

	root, err := svgtree.Parse(source)
	if err != nil {
		c.log.Warn("falling back to source markup: %v", err)
		step(StateFailed)
		res.Markup = source
		res.Fallback = true
		return res
	}
	step(StateParsed)

	box := Measure(root)
	step(StateMeasured)

	var container *svgtree.Node
	if opts.Layered() {
		container, res.Style = c.layered(root, box, opts, step)
	} else {
		container = c.passThrough(root, box, opts)
		step(StateLayersAttached)
	}

	res.Markup = svgtree.Serialize(container)
	step(StateSerialized)
	return res
}

func newContainer() *svgtree.Node {
	return svgtree.NewElement("svg", map[string]string{
		"width":       "512",
		"height":      "512",
		"viewBox":     "0 0 512 512",
		"fill":        "none",
		"xmlns":       xmlnsSVG,
		"xmlns:xlink": xmlnsXLink,
		"class":       "",
	})
}

// passThrough places a copy of the whole icon on the canvas by sizing it as a
// nested svg. No geometry is rewritten.
func (c *Composer) passThrough(root *svgtree.Node, box layers.Box, opts models.RenderOptions) *svgtree.Node {
	scale := box.Scale(opts.Size)
	width := box.Width * scale
	height := box.Height * scale
	x := layers.Canvas/2 - width/2 + opts.OffsetX
	y := layers.Canvas/2 - height/2 + opts.OffsetY

	icon := root.Clone()
	icon.SetAttr("width", formatRounded(width))
	icon.SetAttr("height", formatRounded(height))
	icon.SetAttr("x", formatRounded(x))
	icon.SetAttr("y", formatRounded(y))
	icon.SetAttr("style", "color: "+opts.Color+";")
	icon.SetAttr("alignment-baseline", "middle")
	if !icon.HasAttr("viewBox") {
		icon.SetAttr("viewBox", fmt.Sprintf("%s %s %s %s",
			layers.FormatFloat(box.MinX), layers.FormatFloat(box.MinY),
			layers.FormatFloat(box.Width), layers.FormatFloat(box.Height)))
	}

	container := newContainer()
	container.Append(icon)
	return container
}

// layered rebuilds the icon from its drawing elements.
func (c *Composer) layered(root *svgtree.Node, box layers.Box, opts models.RenderOptions, step func(State)) (*svgtree.Node, layers.IconStyle) {
	elements := layers.CollectDrawingElements(root)
	style := layers.InferStyle(elements)
	step(StateClassified)

	shell := layers.StripGeometry(root)
	step(StateShellBuilt)

	defs := svgtree.NewElement("defs", nil)
	if opts.Glow {
		defs.Append(layers.GlowFilters()...)
	}
	if opts.Glass {
		defs.Append(layers.GlassDefs(opts.Color)...)
	}
	defs.Append(shellResources(shell)...)
	step(StateDefsAugmented)

	var synthesized []*svgtree.Node
	if opts.Glow {
		synthesized = append(synthesized, layers.GlowLayers(elements, opts.Color, style)...)
	}
	if opts.Glass {
		synthesized = append(synthesized, layers.GlassLayers(elements, opts.Color, style)...)
	} else {
		synthesized = append(synthesized, layers.FlatLayer(elements, opts.Color, style))
	}

	container := newContainer()
	container.Append(defs)
	container.Append(shellMetadata(shell)...)
	container.Append(layers.TransformWrapper(box, opts.Size, opts.OffsetX, opts.OffsetY, synthesized...))
	step(StateLayersAttached)

	c.log.Debug("Compose", "%d drawing elements, %s, glow=%t glass=%t",
		len(elements), style, opts.Glow, opts.Glass)
	return container, style
}

var metadataTags = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

// shellResources returns the definitions found anywhere in the shell, with
// defs wrappers flattened. The shell itself is left as is.
func shellResources(shell *svgtree.Node) []*svgtree.Node {
	var out []*svgtree.Node
	svgtree.Walk(shell, func(n *svgtree.Node) bool {
		if n == shell || !layers.IsResource(n) {
			return true
		}
		if n.Tag == "defs" {
			for _, child := range n.Children {
				if child.Kind == svgtree.ElementNode {
					out = append(out, child.Clone())
				}
			}
		} else {
			out = append(out, n.Clone())
		}
		return false
	})
	return out
}

// shellMetadata returns the shell's top-level title, desc and metadata.
func shellMetadata(shell *svgtree.Node) []*svgtree.Node {
	var out []*svgtree.Node
	for _, child := range shell.Children {
		if child.Kind == svgtree.ElementNode && metadataTags[child.Tag] {
			out = append(out, child.Clone())
		}
	}
	return out
}

// formatRounded rounds half up, so -2.5 becomes -2.
func formatRounded(v float64) string {
	return layers.FormatFloat(math.Floor(v + 0.5))
}
