package html

import (
	"strings"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// DocumentTag is the tag name of the synthetic node at the top of every Document.
const DocumentTag = "document"

type Document struct {
	Root        *Node
	Stylesheets []string // CSS collected from <style> elements, in document order
	Scripts     []string // JavaScript collected from <script> elements, in document order
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  DocumentTag,
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// DocumentElement returns the <html> element, or the first element child of the
// synthetic root when the markup had none.
func (d *Document) DocumentElement() *Node {
	for _, child := range d.Root.Children {
		if child.Type == ElementNode {
			return child
		}
	}
	return nil
}

// Body returns the <body> element, falling back to the document element.
func (d *Document) Body() *Node {
	if body := d.Root.FirstByTag("body"); body != nil {
		return body
	}
	return d.DocumentElement()
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: attrs,
		Children:   make([]*Node, 0),
	}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text}
}

func (n *Node) IsElement() bool { return n != nil && n.Type == ElementNode }

func (n *Node) IsText() bool { return n != nil && n.Type == TextNode }

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

// ID returns the element's id attribute, or "".
func (n *Node) ID() string {
	id, _ := n.GetAttribute("id")
	return id
}

// Classes returns the whitespace-separated class list.
func (n *Node) Classes() []string {
	cls, _ := n.GetAttribute("class")
	return strings.Fields(cls)
}

// HasClass reports whether the class list contains cls.
func (n *Node) HasClass(cls string) bool {
	for _, c := range n.Classes() {
		if c == cls {
			return true
		}
	}
	return false
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(NewText(text))
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild. A nil or foreign refChild appends.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	if refChild == nil {
		n.AddChild(newChild)
		return newChild
	}

	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			return newChild
		}
	}

	n.AddChild(newChild)
	return newChild
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) NextSibling() *Node {
	i := n.IndexInParent()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

func (n *Node) PrevSibling() *Node {
	i := n.IndexInParent()
	if i <= 0 {
		return nil
	}
	return n.Parent.Children[i-1]
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of n and all its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Type == TextNode {
			sb.WriteString(d.Text)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.Type == TextNode {
		n.Text = text
		return
	}
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = n.Children[:0]
	n.AppendText(text)
}

// Walk visits n and its descendants in document order. Returning false from fn
// skips the visited node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// ElementByID returns the first element in n's subtree with the given id.
func (n *Node) ElementByID(id string) *Node {
	var found *Node
	n.Walk(func(d *Node) bool {
		if found != nil {
			return false
		}
		if d.Type == ElementNode && d.ID() == id {
			found = d
			return false
		}
		return true
	})
	return found
}

// ElementsByTag collects every element in n's subtree (excluding n) with the tag.
func (n *Node) ElementsByTag(tag string) []*Node {
	var result []*Node
	tag = strings.ToLower(tag)
	for _, child := range n.Children {
		child.Walk(func(d *Node) bool {
			if d.Type == ElementNode && (tag == "*" || d.TagName == tag) {
				result = append(result, d)
			}
			return true
		})
	}
	return result
}

// FirstByTag returns the first element in n's subtree (excluding n) with the tag.
func (n *Node) FirstByTag(tag string) *Node {
	for _, child := range n.Children {
		var found *Node
		child.Walk(func(d *Node) bool {
			if found != nil {
				return false
			}
			if d.Type == ElementNode && d.TagName == tag {
				found = d
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// String renders a short debugging label: tag#id.class for elements, quoted text otherwise.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Type == TextNode {
		t := n.Text
		if len(t) > 24 {
			t = t[:24] + "…"
		}
		return `"` + t + `"`
	}
	var sb strings.Builder
	sb.WriteString(n.TagName)
	if id := n.ID(); id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}
	for _, c := range n.Classes() {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	return sb.String()
}
