package svgtree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ============================================================
// Parser
// ============================================================

// ErrMalformedMarkup is returned when icon markup cannot be turned into a tree.
var ErrMalformedMarkup = errors.New("malformed markup")

// Parse reads SVG markup into a tree rooted at the single top-level element.
// Comments, processing instructions, directives and whitespace-only
// character data are dropped.
func Parse(markup string) (*Node, error) {
	return ParseReader(strings.NewReader(markup))
}

// ParseReader is Parse over a stream.
func ParseReader(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)

	for {
		// RawToken keeps prefixes such as xlink:href intact; element nesting is
		// checked against our own stack.
		tok, err := decoder.RawToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Kind:  ElementNode,
				Tag:   qualifiedName(t.Name),
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, attr := range t.Attr {
				node.Attrs[qualifiedName(attr.Name)] = attr.Value
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedMarkup)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected end element </%s>", ErrMalformedMarkup, name)
			}
			top := stack[len(stack)-1]
			if top.Tag != name {
				return nil, fmt.Errorf("%w: element <%s> closed by </%s>", ErrMalformedMarkup, top.Tag, name)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: character data outside root element", ErrMalformedMarkup)
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, NewText(text))
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unterminated element <%s>", ErrMalformedMarkup, stack[len(stack)-1].Tag)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedMarkup)
	}
	return root, nil
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
