package layout

import (
	"fmt"
	"io"
	"strings"
)

// NodeSnapshot is a plain value copy of a layout subtree, comparable with
// go-cmp and free of parent pointers.
type NodeSnapshot struct {
	Kind      string
	Label     string
	Text      string `json:",omitempty"`
	Synthetic bool   `json:",omitempty"`
	Outer     Rect
	Inner     Rect
	Children  []NodeSnapshot `json:",omitempty"`
}

// Snapshot copies the subtree rooted at n.
func Snapshot(n Node) NodeSnapshot {
	s := NodeSnapshot{
		Kind:  n.Kind().String(),
		Label: n.DOM().String(),
		Outer: n.Box().Outer,
		Inner: n.Box().Inner,
	}
	switch v := n.(type) {
	case *TextRunNode:
		s.Text = v.Text
	case *MarkerNode:
		s.Synthetic = v.Synthetic
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, Snapshot(c))
	}
	return s
}

// Dump writes an indented outline of the subtree rooted at n.
func Dump(w io.Writer, n Node) error {
	return dump(w, n, 0)
}

func dump(w io.Writer, n Node, depth int) error {
	r := n.Box().Outer
	line := fmt.Sprintf("%s%s %s [%g,%g %gx%g]",
		strings.Repeat("  ", depth), n.Kind(), n.DOM(), r.X, r.Y, r.Width, r.Height)
	switch v := n.(type) {
	case *TextRunNode:
		line += fmt.Sprintf(" %q", v.Text)
	case *MarkerNode:
		if v.Synthetic {
			line += " synthetic"
		}
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range n.Children() {
		if err := dump(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}
