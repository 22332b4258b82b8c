package svgtree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const academicCap = `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor">
  <title>cap</title>
  <path stroke-linecap="round" stroke-linejoin="round" d="M4.26 10.147a60.438 60.438 0 0 0-.491 6.347"/>
  <g clip-path="url(#c)"><rect x="1" y="1" width="4" height="4"/></g>
  <defs><clipPath id="c"><rect width="24" height="24"/></clipPath></defs>
</svg>`

// shape strips a tree down to what round trips must preserve.
type shape struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []shape
}

func shapeOf(n *Node) shape {
	s := shape{Tag: n.Tag, Attrs: n.Attrs, Text: n.Text}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

func TestParseBuildsTree(t *testing.T) {
	root, err := Parse(academicCap)
	require.NoError(t, err)

	assert.Equal(t, "svg", root.Tag)
	assert.Equal(t, ElementNode, root.Kind)
	assert.Equal(t, "0 0 24 24", root.Attrs["viewBox"])
	require.Len(t, root.Children, 4)

	title := root.Children[0]
	require.Len(t, title.Children, 1)
	assert.Equal(t, TextNode, title.Children[0].Kind)
	assert.Equal(t, "cap", title.Children[0].Text)

	assert.True(t, root.Children[1].IsElement("path"))
	assert.Equal(t, "url(#c)", root.Children[2].Attrs["clip-path"])
}

func TestParseKeepsNamespacePrefixes(t *testing.T) {
	root, err := Parse(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><image xlink:href="a.png"/></svg>`)
	require.NoError(t, err)

	assert.Equal(t, "http://www.w3.org/1999/xlink", root.Attrs["xmlns:xlink"])
	assert.Equal(t, "a.png", root.Children[0].Attrs["xlink:href"])
}

func TestParseRoundTrip(t *testing.T) {
	first, err := Parse(academicCap)
	require.NoError(t, err)

	second, err := Parse(Serialize(first))
	require.NoError(t, err)

	if diff := cmp.Diff(shapeOf(first), shapeOf(second)); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, markup := range []string{
		`<svg><path d="M0 0"`,
		`<svg><path d="M0 0"/>`,
		`<svg></g>`,
		`<svg/><svg/>`,
		``,
		`just text`,
	} {
		t.Run(markup, func(t *testing.T) {
			_, err := Parse(markup)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedMarkup))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	root, err := Parse(academicCap)
	require.NoError(t, err)

	copied := root.Clone()
	if diff := cmp.Diff(shapeOf(root), shapeOf(copied)); diff != "" {
		t.Fatalf("clone differs:\n%s", diff)
	}

	copied.SetAttr("viewBox", "0 0 48 48")
	copied.Children[1].SetAttr("d", "M0 0")
	copied.Children = copied.Children[:1]

	assert.Equal(t, "0 0 24 24", root.Attrs["viewBox"])
	assert.Equal(t, "M4.26 10.147a60.438 60.438 0 0 0-.491 6.347", root.Children[1].Attrs["d"])
	assert.Len(t, root.Children, 4)
}

func TestSerializeEscapesAndSorts(t *testing.T) {
	n := NewElement("text", map[string]string{"y": "2", "x": `a"b`}, NewText("1 < 2"))
	assert.Equal(t, `<text x="a&#34;b" y="2">1 &lt; 2</text>`, Serialize(n))

	empty := NewElement("rect", map[string]string{"width": "4"})
	assert.Equal(t, `<rect width="4"/>`, Serialize(empty))
}

func TestWalkSkipsChildren(t *testing.T) {
	root, err := Parse(academicCap)
	require.NoError(t, err)

	var tags []string
	Walk(root, func(n *Node) bool {
		if n.Kind == ElementNode {
			tags = append(tags, n.Tag)
		}
		return n.Tag != "defs"
	})
	assert.Equal(t, []string{"svg", "title", "path", "g", "rect", "defs"}, tags)
}
