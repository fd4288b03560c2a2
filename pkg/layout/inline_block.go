package layout

// InlineBlockNode places an independently laid out block on a line as one
// atomic item.
type InlineBlockNode struct {
	nodeBase
	block *BlockNode
}

func (n *InlineBlockNode) Children() []Node {
	if n.block == nil {
		return nil
	}
	return []Node{n.block}
}

func (n *InlineBlockNode) lineItem() {}

// Block returns the nested block.
func (n *InlineBlockNode) Block() *BlockNode { return n.block }

// LayoutAtomic lays out the element as a block whose containing block starts
// at x and keeps the full containing width, then takes over its box.
func (n *InlineBlockNode) LayoutAtomic(cb Containing, x, flowTop float64, env *Env) {
	nested := cb
	nested.X = x
	n.block = env.Factory.NewBlock(n.dom, n)
	n.block.Layout(nested, flowTop, env)
	n.box = n.block.box
}
