package layers

import (
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Drawing-Element Classifier
// ============================================================

var geometryTags = map[string]bool{
	"path":     true,
	"rect":     true,
	"circle":   true,
	"line":     true,
	"ellipse":  true,
	"polygon":  true,
	"polyline": true,
}

// atomicAttributes mark a group whose children only make sense together.
var atomicAttributes = []string{"filter", "mask", "clip-path", "clipPath"}

// resourceTags hold definitions that are referenced, never drawn directly.
var resourceTags = map[string]bool{
	"defs":           true,
	"clipPath":       true,
	"mask":           true,
	"pattern":        true,
	"symbol":         true,
	"marker":         true,
	"linearGradient": true,
	"radialGradient": true,
	"filter":         true,
}

// IsGeometry reports whether n is a drawing primitive.
func IsGeometry(n *svgtree.Node) bool {
	return n != nil && n.Kind == svgtree.ElementNode && geometryTags[n.Tag]
}

// IsAtomicGroup reports whether n is a group carrying a filter, mask or clip.
func IsAtomicGroup(n *svgtree.Node) bool {
	if !n.IsElement("g") {
		return false
	}
	for _, attr := range atomicAttributes {
		if n.HasAttr(attr) {
			return true
		}
	}
	return false
}

// IsResource reports whether n holds definitions rather than drawn content.
func IsResource(n *svgtree.Node) bool {
	return n != nil && n.Kind == svgtree.ElementNode && resourceTags[n.Tag]
}

// CollectDrawingElements returns clones of the visible geometry under root in
// document order. Atomic groups are emitted whole; geometry nodes are emitted
// without their children.
func CollectDrawingElements(root *svgtree.Node) []*svgtree.Node {
	var elements []*svgtree.Node
	collect(root, &elements)
	return elements
}

func collect(n *svgtree.Node, out *[]*svgtree.Node) {
	if n == nil || n.Kind != svgtree.ElementNode {
		return
	}
	if IsAtomicGroup(n) {
		*out = append(*out, n.Clone())
		return
	}
	if IsResource(n) {
		return
	}
	if IsGeometry(n) {
		*out = append(*out, svgtree.NewElement(n.Tag, n.Attrs))
	}
	for _, child := range n.Children {
		collect(child, out)
	}
}

// StripGeometry returns a copy of root with every drawing primitive removed.
// Resource containers are copied verbatim so that references into them keep
// resolving.
func StripGeometry(root *svgtree.Node) *svgtree.Node {
	if root == nil {
		return nil
	}
	if root.Kind != svgtree.ElementNode || IsResource(root) {
		return root.Clone()
	}

	shell := svgtree.NewElement(root.Tag, root.Attrs)
	for _, child := range root.Children {
		if IsGeometry(child) {
			continue
		}
		shell.Append(StripGeometry(child))
	}
	return shell
}
