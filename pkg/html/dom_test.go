package html

import "testing"

func makeTree() *Node {
	// <div id="parent"><span>hello</span><p>world</p></div>
	parent := NewElement("div", map[string]string{"id": "parent"})
	span := NewElement("span", nil)
	span.AppendText("hello")
	parent.AddChild(span)
	p := NewElement("p", nil)
	p.AppendText("world")
	parent.AddChild(p)
	return parent
}

func TestRemoveChild(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	removed := parent.RemoveChild(span)
	if removed != span {
		t.Fatal("RemoveChild should return the removed child")
	}
	if span.Parent != nil {
		t.Error("removed child should have nil parent")
	}
	if len(parent.Children) != 1 {
		t.Errorf("expected 1 child, got %d", len(parent.Children))
	}
	if parent.Children[0].TagName != "p" {
		t.Error("remaining child should be <p>")
	}
}

func TestRemoveChildNotFound(t *testing.T) {
	parent := makeTree()
	other := &Node{Type: ElementNode, TagName: "em"}
	result := parent.RemoveChild(other)
	if result != nil {
		t.Error("RemoveChild of non-child should return nil")
	}
}

func TestInsertBefore(t *testing.T) {
	parent := makeTree()
	em := &Node{Type: ElementNode, TagName: "em", Children: make([]*Node, 0)}
	p := parent.Children[1] // <p>
	parent.InsertBefore(em, p)
	if len(parent.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(parent.Children))
	}
	if parent.Children[1] != em {
		t.Error("em should be at index 1")
	}
	if em.Parent != parent {
		t.Error("em.Parent should be parent")
	}
}

func TestInsertBeforeNilRef(t *testing.T) {
	parent := makeTree()
	em := &Node{Type: ElementNode, TagName: "em", Children: make([]*Node, 0)}
	parent.InsertBefore(em, nil)
	if parent.Children[len(parent.Children)-1] != em {
		t.Error("InsertBefore(nil) should append")
	}
}

func TestInsertBeforeReparent(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	// Insert span before <p> — should move span from index 0 to index 0 (before p, which is now at 0)
	p := parent.Children[1]
	parent.InsertBefore(span, p)
	if len(parent.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(parent.Children))
	}
	if parent.Children[0] != span {
		t.Error("span should remain at index 0")
	}
}

func TestContains(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	textNode := span.Children[0]

	if !parent.Contains(parent) {
		t.Error("node should contain itself")
	}
	if !parent.Contains(span) {
		t.Error("parent should contain child")
	}
	if !parent.Contains(textNode) {
		t.Error("parent should contain grandchild")
	}
	other := &Node{Type: ElementNode, TagName: "em"}
	if parent.Contains(other) {
		t.Error("parent should not contain unrelated node")
	}
}

func TestIndexInParent(t *testing.T) {
	parent := makeTree()
	if parent.IndexInParent() != -1 {
		t.Error("root node should have index -1")
	}
	if parent.Children[0].IndexInParent() != 0 {
		t.Error("first child should be at index 0")
	}
	if parent.Children[1].IndexInParent() != 1 {
		t.Error("second child should be at index 1")
	}
}

func TestSiblings(t *testing.T) {
	parent := makeTree()
	span, p := parent.Children[0], parent.Children[1]
	if span.NextSibling() != p {
		t.Error("span.NextSibling should be p")
	}
	if p.PrevSibling() != span {
		t.Error("p.PrevSibling should be span")
	}
	if span.PrevSibling() != nil || p.NextSibling() != nil {
		t.Error("edge siblings should be nil")
	}
	if parent.NextSibling() != nil {
		t.Error("detached node has no siblings")
	}
}

func TestTextContent(t *testing.T) {
	parent := makeTree()
	if got := parent.TextContent(); got != "helloworld" {
		t.Errorf("expected 'helloworld', got %q", got)
	}
	parent.Children[0].SetTextContent("bye")
	if got := parent.TextContent(); got != "byeworld" {
		t.Errorf("expected 'byeworld', got %q", got)
	}
}

func TestElementQueries(t *testing.T) {
	parent := makeTree()
	if parent.ElementByID("parent") != parent {
		t.Error("ElementByID should find the root itself")
	}
	if parent.ElementByID("missing") != nil {
		t.Error("ElementByID should return nil for unknown ids")
	}
	if got := parent.ElementsByTag("p"); len(got) != 1 || got[0] != parent.Children[1] {
		t.Errorf("ElementsByTag(p) = %v", got)
	}
	if got := parent.ElementsByTag("*"); len(got) != 2 {
		t.Errorf("expected 2 descendants, got %d", len(got))
	}
	if parent.FirstByTag("span") != parent.Children[0] {
		t.Error("FirstByTag(span) should return the span")
	}
}

func TestAddChildReparents(t *testing.T) {
	a := NewElement("div", nil)
	b := NewElement("div", nil)
	child := NewText("x")
	a.AddChild(child)
	b.AddChild(child)
	if len(a.Children) != 0 {
		t.Errorf("old parent should lose the child, has %d", len(a.Children))
	}
	if child.Parent != b {
		t.Error("child.Parent should be the new parent")
	}
}

func TestNodeString(t *testing.T) {
	n := NewElement("DIV", map[string]string{"id": "main", "class": "a b"})
	if got := n.String(); got != "div#main.a.b" {
		t.Errorf("unexpected label %q", got)
	}
}
