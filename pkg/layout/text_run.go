package layout

import (
	"strconv"
	"strings"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/text"
)

// TextRun is the content of a text run node.
type TextRun struct {
	Text string
	// Offset is the rune offset of Text inside the DOM text node.
	Offset  int
	Font    text.FontSpec
	Metrics text.Metrics
	// Style is the element whose style the run was measured with.
	Style *html.Node
	Stack InlineStack
}

// TextRunNode is a measured slice of a text node placed on a line.
type TextRunNode struct {
	nodeBase
	TextRun
}

func (t *TextRunNode) Children() []Node { return nil }
func (t *TextRunNode) lineItem()        {}

// FontFor builds the font descriptor for a computed style.
func FontFor(style css.ComputedStyle) text.FontSpec {
	family := strings.TrimSpace(style.Get("font-family"))
	spec := text.FontSpec{
		Size:   css.FontSize(style),
		Family: family,
		Mono:   text.IsMonospaceFamily(family),
	}
	switch w := strings.TrimSpace(style.Get("font-weight")); w {
	case "bold", "bolder":
		spec.Bold = true
	default:
		if n, err := strconv.Atoi(w); err == nil && n >= 600 {
			spec.Bold = true
		}
	}
	switch strings.TrimSpace(style.Get("font-style")) {
	case "italic", "oblique":
		spec.Italic = true
	}
	return spec
}
