package layers

import (
	"icon-studio/internal/composer/svgtree"
)

// IconStyle decides whether synthesized layers paint with fill or stroke.
type IconStyle uint8

const (
	Stroked IconStyle = iota
	Filled
)

func (s IconStyle) String() string {
	if s == Filled {
		return "filled"
	}
	return "stroked"
}

// InferStyle is Filled when any element declares a non-empty fill other than
// "none".
// Only the elements' own attributes are inspected.
func InferStyle(elements []*svgtree.Node) IconStyle {
	for _, el := range elements {
		if fill, ok := el.Attr("fill"); ok && fill != "" && fill != "none" {
			return Filled
		}
	}
	return Stroked
}
