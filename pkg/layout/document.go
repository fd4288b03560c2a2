package layout

import "boxwalk/pkg/html"

// Document is the result of one layout pass.
type Document struct {
	viewport Rect
	// Root is nil until layout completes.
	Root  *BlockNode
	byDOM map[*html.Node][]Node
	count int
}

func newDocument(viewport Rect) *Document {
	return &Document{
		viewport: viewport,
		byDOM:    make(map[*html.Node][]Node),
	}
}

// Viewport returns the initial containing block.
func (d *Document) Viewport() Rect { return d.viewport }

// NodesByDOM returns every layout node generated from dom, in creation order.
func (d *Document) NodesByDOM(dom *html.Node) []Node {
	nodes := d.byDOM[dom]
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// Len returns the number of registered nodes.
func (d *Document) Len() int { return d.count }

// Walk visits the tree from the root in pre-order. Returning false from fn
// skips the visited node's children.
func (d *Document) Walk(fn func(Node) bool) {
	if d.Root == nil {
		return
	}
	walk(d.Root, fn)
}

func walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		walk(c, fn)
	}
}

func (d *Document) register(n Node) {
	d.byDOM[n.DOM()] = append(d.byDOM[n.DOM()], n)
	d.count++
}

func (d *Document) unregister(n Node) {
	nodes := d.byDOM[n.DOM()]
	for i, c := range nodes {
		if c == n {
			nodes = append(nodes[:i:i], nodes[i+1:]...)
			d.count--
			break
		}
	}
	if len(nodes) == 0 {
		delete(d.byDOM, n.DOM())
		return
	}
	d.byDOM[n.DOM()] = nodes
}
