package layout

import "boxwalk/pkg/html"

// Factory creates layout nodes and registers them with their document.
type Factory struct {
	doc *Document
}

func NewFactory(doc *Document) *Factory {
	return &Factory{doc: doc}
}

// Document returns the document nodes are registered with.
func (f *Factory) Document() *Document { return f.doc }

func (f *Factory) NewBlock(dom *html.Node, parent Node) *BlockNode {
	n := &BlockNode{nodeBase: nodeBase{kind: KindBlock, dom: dom, parent: parent}}
	f.doc.register(n)
	return n
}

func (f *Factory) NewInlineBox(dom *html.Node, parent Node) *InlineBoxNode {
	n := &InlineBoxNode{nodeBase: nodeBase{kind: KindInlineBox, dom: dom, parent: parent}}
	f.doc.register(n)
	return n
}

func (f *Factory) NewLineBox(dom *html.Node, parent Node) *LineBoxNode {
	n := &LineBoxNode{nodeBase: nodeBase{kind: KindLineBox, dom: dom, parent: parent}}
	f.doc.register(n)
	return n
}

func (f *Factory) NewTextRun(dom *html.Node, parent Node, run TextRun) *TextRunNode {
	n := &TextRunNode{nodeBase: nodeBase{kind: KindTextRun, dom: dom, parent: parent}, TextRun: run}
	f.doc.register(n)
	return n
}

func (f *Factory) NewInlineBlock(dom *html.Node, parent Node) *InlineBlockNode {
	n := &InlineBlockNode{nodeBase: nodeBase{kind: KindInlineBlock, dom: dom, parent: parent}}
	f.doc.register(n)
	return n
}

// NewMarker creates an inline-start or inline-end marker for el.
func (f *Factory) NewMarker(el *html.Node, parent Node, kind Kind, synthetic bool, stack InlineStack) *MarkerNode {
	if kind != KindInlineStart && kind != KindInlineEnd {
		panic("layout: marker kind must be inline-start or inline-end")
	}
	n := &MarkerNode{
		nodeBase:  nodeBase{kind: kind, dom: el, parent: parent},
		Synthetic: synthetic,
		Stack:     stack,
	}
	f.doc.register(n)
	return n
}

// Discard unregisters n and its subtree.
func (f *Factory) Discard(n Node) {
	for _, c := range n.Children() {
		f.Discard(c)
	}
	f.doc.unregister(n)
}
