package layout

import (
	"go.uber.org/zap"

	"boxwalk/pkg/css"
)

// BlockNode is the box of a block-level element. Its children are nested
// blocks and inline boxes, stacked vertically.
type BlockNode struct {
	nodeBase
	children []Node
}

func (b *BlockNode) Children() []Node { return b.children }

// Layout resolves the box model of the element against cb, placing the top
// margin edge at flowTop, then lays out its content.
func (b *BlockNode) Layout(cb Containing, flowTop float64, env *Env) {
	style := env.style(b.dom)
	box := &b.box

	box.Margin = resolveEdges(style, "margin-", cb.Width)
	box.Padding = resolveEdges(style, "padding-", cb.Width)
	box.Border = resolveBorder(style)
	resolvePaint(box, style)

	contentWidth := cb.Width - box.Margin.Horizontal() - box.Border.Horizontal() - box.Padding.Horizontal()
	if l, ok := css.ParseLengthOrPercent(style.Get("width")); ok {
		contentWidth = l.Resolve(cb.Width)
	}
	contentWidth = nonNegative(contentWidth)

	explicitHeight, heightDefinite := resolveHeight(style, cb)

	outer := Rect{
		X:     cb.X + box.Margin.Left,
		Y:     flowTop + box.Margin.Top,
		Width: contentWidth + box.Padding.Horizontal() + box.Border.Horizontal(),
	}
	box.setOuter(outer)

	inner := Containing{
		Rect: Rect{
			X:      box.Inner.X,
			Y:      box.Inner.Y,
			Width:  contentWidth,
			Height: explicitHeight,
		},
		HeightDefinite: heightDefinite,
	}
	cursor := b.layoutChildren(inner, env)

	contentHeight := nonNegative(cursor - inner.Y)
	if heightDefinite {
		contentHeight = explicitHeight
	}
	outer.Height = contentHeight + box.Padding.Vertical() + box.Border.Vertical()
	box.setOuter(outer)
}

// layoutChildren drives a walker over the element's children and returns the
// final vertical cursor.
func (b *BlockNode) layoutChildren(cb Containing, env *Env) float64 {
	w := NewWalker(b.dom)
	cursor := cb.Y
	var open InlineStack

	for {
		tok, ok := w.Peek()
		if !ok {
			break
		}
		if tok.Kind == TokenStart {
			switch env.display(tok.Node) {
			case DisplayNone:
				w.Consume(false)
				continue
			case DisplayBlock:
				child := env.Factory.NewBlock(tok.Node, b)
				child.Layout(cb, cursor, env)
				b.children = append(b.children, child)
				cursor = child.box.Outer.Bottom() + child.box.Margin.Bottom
				w.Consume(false)
				continue
			}
		}

		before := w.Pos()
		ib := env.Factory.NewInlineBox(b.dom, b)
		var produced bool
		produced, open = ib.LayoutSegment(w, cb, cursor, open, env)
		if !produced {
			env.Factory.Discard(ib)
			if w.Pos() == before {
				env.Logger.Debug("forcing walker progress",
					zap.Stringer("block", b.dom),
					zap.Stringer("token", tok.Kind),
					zap.Stringer("node", tok.Node))
				w.Consume(true)
			}
			continue
		}
		b.children = append(b.children, ib)
		cursor = ib.box.Outer.Bottom() + ib.box.Margin.Bottom
	}
	return cursor
}

var sides = [4]string{"top", "right", "bottom", "left"}

// resolveEdges resolves margin or padding lengths. Percentages refer to the
// containing block width on all four sides; auto and negative values become 0.
func resolveEdges(style css.ComputedStyle, prefix string, cbWidth float64) Edges {
	var v [4]float64
	for i, side := range sides {
		if l, ok := css.ParseLengthOrPercent(style.Get(prefix + side)); ok {
			v[i] = nonNegative(l.Resolve(cbWidth))
		}
	}
	return Edges{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
}

// resolveBorder resolves border widths, zeroing sides whose style is none or
// hidden.
func resolveBorder(style css.ComputedStyle) Edges {
	var v [4]float64
	for i, side := range sides {
		if css.BorderVisible(style.Get("border-" + side + "-style")) {
			v[i] = css.BorderWidth(style.Get("border-" + side + "-width"))
		}
	}
	return Edges{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
}

// resolveHeight returns the explicit content height and whether there is one.
// A percentage needs a definite containing block height.
func resolveHeight(style css.ComputedStyle, cb Containing) (float64, bool) {
	l, ok := css.ParseLengthOrPercent(style.Get("height"))
	if !ok {
		return 0, false
	}
	if l.Percent && !cb.HeightDefinite {
		return 0, false
	}
	return nonNegative(l.Resolve(cb.Height)), true
}

func resolvePaint(box *LayoutBox, style css.ComputedStyle) {
	if c, ok := css.ResolveColor(style.Get("background-color"), style); ok {
		box.Background = c
	}
	box.BorderColor = css.Black
	for _, side := range sides {
		s := style.Get("border-" + side + "-style")
		if !css.BorderVisible(s) {
			continue
		}
		box.BorderStyle = s
		if c, ok := css.ResolveColor(style.Get("border-"+side+"-color"), style); ok {
			box.BorderColor = c
		}
		break
	}
}
