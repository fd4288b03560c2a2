package layout

import (
	"math"

	"boxwalk/pkg/css"
)

// Rect is an axis-aligned rectangle in document coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Shrink insets r by e. Width and height never go below zero.
func (r Rect) Shrink(e Edges) Rect {
	return Rect{
		X:      r.X + e.Left,
		Y:      r.Y + e.Top,
		Width:  nonNegative(r.Width - e.Horizontal()),
		Height: nonNegative(r.Height - e.Vertical()),
	}
}

// Edges holds the four insets of a margin, border or padding.
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// LayoutBox is the geometry and paint data of one layout node.
//
// Outer is the border box, Scroll the padding box and Inner the content box.
// Scroll is always Outer shrunk by Border, and Inner is Scroll shrunk by Padding.
type LayoutBox struct {
	Outer  Rect
	Scroll Rect
	Inner  Rect

	Margin  Edges
	Border  Edges
	Padding Edges

	Background  css.Color
	BorderColor css.Color
	BorderStyle string
}

func (b *LayoutBox) ContentWidth() float64  { return b.Inner.Width }
func (b *LayoutBox) ContentHeight() float64 { return b.Inner.Height }

// MarginBox returns the outer box grown by the margins.
func (b *LayoutBox) MarginBox() Rect {
	return Rect{
		X:      b.Outer.X - b.Margin.Left,
		Y:      b.Outer.Y - b.Margin.Top,
		Width:  b.Outer.Width + b.Margin.Horizontal(),
		Height: b.Outer.Height + b.Margin.Vertical(),
	}
}

// setOuter places the border box and derives the padding and content boxes.
func (b *LayoutBox) setOuter(r Rect) {
	r.Width = nonNegative(r.Width)
	r.Height = nonNegative(r.Height)
	b.Outer = r
	b.Scroll = r.Shrink(b.Border)
	b.Inner = b.Scroll.Shrink(b.Padding)
}

// Containing is the containing block a node is laid out against. Percentage
// heights only resolve when HeightDefinite is set.
type Containing struct {
	Rect
	HeightDefinite bool
}

// nonNegative clamps negative and non-finite values to zero.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
