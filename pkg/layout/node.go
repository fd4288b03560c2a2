package layout

import "boxwalk/pkg/html"

// Kind identifies the variant of a layout node.
type Kind int

const (
	KindBlock Kind = iota
	KindInlineBox
	KindLineBox
	KindTextRun
	KindInlineBlock
	KindInlineStart
	KindInlineEnd
)

var kindNames = [...]string{
	KindBlock:       "block",
	KindInlineBox:   "inline-box",
	KindLineBox:     "line-box",
	KindTextRun:     "text-run",
	KindInlineBlock: "inline-block",
	KindInlineStart: "inline-start",
	KindInlineEnd:   "inline-end",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is a node of the layout tree. The set of implementations is closed:
// *BlockNode, *InlineBoxNode, *LineBoxNode, *TextRunNode, *InlineBlockNode
// and *MarkerNode.
type Node interface {
	Kind() Kind
	// DOM is the node this layout node was generated from.
	DOM() *html.Node
	Parent() Node
	Box() *LayoutBox
	// Children returns the structural children in paint order.
	Children() []Node

	sealed()
}

// LineItem is a node that may sit directly in a line box.
type LineItem interface {
	Node
	lineItem()
}

type nodeBase struct {
	kind   Kind
	dom    *html.Node
	parent Node
	box    LayoutBox
}

func (n *nodeBase) Kind() Kind      { return n.kind }
func (n *nodeBase) DOM() *html.Node { return n.dom }
func (n *nodeBase) Parent() Node    { return n.parent }
func (n *nodeBase) Box() *LayoutBox { return &n.box }
func (n *nodeBase) sealed()         {}

// InlineStack is the list of inline elements open at some point of a block's
// content, outermost first. Operations return new stacks and never modify
// their receiver's backing array.
type InlineStack []*html.Node

// Push returns the stack with el appended.
func (s InlineStack) Push(el *html.Node) InlineStack {
	out := make(InlineStack, len(s), len(s)+1)
	copy(out, s)
	return append(out, el)
}

// PopThrough removes el and everything opened after it. The stack is returned
// unchanged when el is not open.
func (s InlineStack) PopThrough(el *html.Node) InlineStack {
	i := s.Index(el)
	if i < 0 {
		return s
	}
	return s[:i:i]
}

// Index returns the position of el, searching from the innermost end, or -1.
func (s InlineStack) Index(el *html.Node) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == el {
			return i
		}
	}
	return -1
}

func (s InlineStack) Contains(el *html.Node) bool { return s.Index(el) >= 0 }

// Innermost returns the most recently opened element, or nil.
func (s InlineStack) Innermost() *html.Node {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// Clone returns an independent copy suitable for storing in a node.
func (s InlineStack) Clone() InlineStack {
	if len(s) == 0 {
		return nil
	}
	out := make(InlineStack, len(s))
	copy(out, s)
	return out
}
