package svgtree

import "sort"

// ============================================================
// Structural Model
// ============================================================

// Kind distinguishes element nodes from character data.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	}
	return "unknown"
}

// Node is one node of a parsed SVG document. Element nodes use Tag, Attrs
// and Children; text nodes only carry Text.
//
// A Node is owned by exactly one parent. Code that derives a new tree from an
// existing one must Clone the nodes it reuses.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// NewElement builds an element node. attrs is copied.
func NewElement(tag string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{
		Kind:  ElementNode,
		Tag:   tag,
		Attrs: make(map[string]string, len(attrs)),
	}
	for k, v := range attrs {
		n.Attrs[k] = v
	}
	n.Children = append(n.Children, children...)
	return n
}

// NewText builds a character data node.
func NewText(text string) *Node {
	return &Node{Kind: TextNode, Text: text}
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Kind == ElementNode && n.Tag == tag
}

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute is declared, even if empty.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets an attribute, allocating the map on first use.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(name string) {
	delete(n.Attrs, name)
}

// Append adds children at the end of n.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// AttrNames returns the attribute names in sorted order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of n. The copy shares no maps or slices with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// CloneAll deep-copies every node of the slice.
func CloneAll(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}
