package svgtree

import (
	"encoding/xml"
	"strings"
)

// ============================================================
// Serializer
// ============================================================

// Serialize writes n back to markup. Attributes are emitted in sorted order so
// equal trees always produce equal strings.
func Serialize(n *Node) string {
	var builder strings.Builder
	writeNode(&builder, n)
	return builder.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}

	if n.Kind == TextNode {
		xml.EscapeText(b, []byte(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, name := range n.AttrNames() {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		xml.EscapeText(b, []byte(n.Attrs[name]))
		b.WriteByte('"')
	}

	if len(n.Children) == 0 {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')
	for _, child := range n.Children {
		writeNode(b, child)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}
