package layout

// MarkerNode stands for the opening or closing boundary of an inline element
// inside a line. It has no width; its height is the line height.
type MarkerNode struct {
	nodeBase
	// Synthetic is set on markers that reopen or close an element whose
	// content was interrupted by a block, as opposed to markers for the
	// element's real start and end tags.
	Synthetic bool
	// Stack is the open inline elements at emission, ending with the
	// marker's own element.
	Stack InlineStack
}

func (m *MarkerNode) Children() []Node { return nil }
func (m *MarkerNode) lineItem()        {}

// IsStart reports whether m opens its element.
func (m *MarkerNode) IsStart() bool { return m.kind == KindInlineStart }

// Depth is the nesting depth of the marker's element, 1 for the outermost.
func (m *MarkerNode) Depth() int { return len(m.Stack) }
