package main

import (
	"fmt"
	"strconv"

	"boxwalk/pkg/layout"
)

// treeIndex adapts a layout tree to the string ids a fyne Tree works with.
// The root node has id "0"; children append ".<index>" to their parent's id.
type treeIndex struct {
	nodes    map[string]layout.Node
	children map[string][]string
}

func newTreeIndex(root layout.Node) *treeIndex {
	t := &treeIndex{
		nodes:    make(map[string]layout.Node),
		children: make(map[string][]string),
	}
	if root != nil {
		t.children[""] = []string{"0"}
		t.add("0", root)
	}
	return t
}

func (t *treeIndex) add(id string, n layout.Node) {
	t.nodes[id] = n
	for i, c := range n.Children() {
		cid := id + "." + strconv.Itoa(i)
		t.children[id] = append(t.children[id], cid)
		t.add(cid, c)
	}
}

func (t *treeIndex) Children(id string) []string { return t.children[id] }

func (t *treeIndex) IsBranch(id string) bool { return len(t.children[id]) > 0 }

func (t *treeIndex) Node(id string) layout.Node { return t.nodes[id] }

func (t *treeIndex) Label(id string) string {
	n := t.nodes[id]
	if n == nil {
		return ""
	}
	label := fmt.Sprintf("%s %s", n.Kind(), n.DOM())
	switch v := n.(type) {
	case *layout.TextRunNode:
		label += fmt.Sprintf(" %q", v.Text)
	case *layout.MarkerNode:
		if v.Synthetic {
			label += " (synthetic)"
		}
	}
	return label
}

// Detail describes a node's geometry for the status line.
func (t *treeIndex) Detail(id string) string {
	n := t.nodes[id]
	if n == nil {
		return ""
	}
	b := n.Box()
	return fmt.Sprintf("%s  outer %g,%g %gx%g  content %g,%g %gx%g",
		t.Label(id),
		b.Outer.X, b.Outer.Y, b.Outer.Width, b.Outer.Height,
		b.Inner.X, b.Inner.Y, b.Inner.Width, b.Inner.Height)
}
