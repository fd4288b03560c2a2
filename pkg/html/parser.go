package html

import (
	"fmt"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser converts the x/net/html parse tree into boxwalk's DOM, collecting
// stylesheets and scripts on the way and normalising whitespace.
type Parser struct {
	doc *Document
	// KeepWhitespace disables whitespace collapsing and the removal of
	// whitespace-only text nodes between block-level siblings.
	KeepWhitespace bool
}

func NewParser() *Parser {
	return &Parser{doc: NewDocument()}
}

func (p *Parser) Parse(r io.Reader) (*Document, error) {
	root, err := nethtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		p.convert(c, p.doc.Root, false)
	}
	if !p.KeepWhitespace {
		pruneWhitespace(p.doc.Root)
	}
	return p.doc, nil
}

// convert appends the DOM equivalent of src to parent.
func (p *Parser) convert(src *nethtml.Node, parent *Node, inPre bool) {
	switch src.Type {
	case nethtml.TextNode:
		text := src.Data
		if !p.KeepWhitespace && !inPre {
			text = collapseWhitespace(text)
		}
		parent.AppendText(text)

	case nethtml.ElementNode:
		switch src.DataAtom {
		case atom.Style:
			p.doc.Stylesheets = append(p.doc.Stylesheets, rawText(src))
			return
		case atom.Script:
			if typ := attr(src, "type"); typ == "" || strings.Contains(typ, "javascript") {
				p.doc.Scripts = append(p.doc.Scripts, rawText(src))
			}
			return
		}

		attrs := make(map[string]string, len(src.Attr))
		for _, a := range src.Attr {
			attrs[strings.ToLower(a.Key)] = a.Val
		}
		node := NewElement(src.Data, attrs)
		parent.AddChild(node)

		pre := inPre || src.DataAtom == atom.Pre || src.DataAtom == atom.Textarea
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			p.convert(c, node, pre)
		}
	}
	// Comments, doctypes and raw document nodes carry nothing layout can use.
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.ToLower(strings.TrimSpace(a.Val))
		}
	}
	return ""
}

func rawText(n *nethtml.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// collapseWhitespace folds every whitespace run into one space.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !prevSpace {
				sb.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func isWhitespaceOnly(s string) bool {
	return strings.TrimFunc(s, isSpace) == ""
}

// pruneWhitespace drops whitespace-only text nodes that sit at the edge of a
// block-level parent or next to a block-level sibling. Whitespace between two
// inline siblings survives because it is rendered.
func pruneWhitespace(n *Node) {
	if n.Type != ElementNode {
		return
	}
	if n.TagName == "pre" || n.TagName == "textarea" {
		return
	}
	blockParent := n.TagName == DocumentTag || IsBlockLevelTag(n.TagName)
	children := n.Children
	kept := make([]*Node, 0, len(children))
	for i, child := range children {
		if child.Type == TextNode && isWhitespaceOnly(child.Text) {
			first, last := i == 0, i == len(children)-1
			prevBlock := i > 0 && isBlockElement(children[i-1])
			nextBlock := i+1 < len(children) && isBlockElement(children[i+1])
			if (blockParent && (first || last)) || prevBlock || nextBlock || child.Text == "" {
				child.Parent = nil
				continue
			}
		}
		kept = append(kept, child)
	}
	n.Children = kept
	for _, child := range n.Children {
		pruneWhitespace(child)
	}
}

func isBlockElement(n *Node) bool {
	return n.Type == ElementNode && (IsBlockLevelTag(n.TagName) || IsHiddenTag(n.TagName))
}

// IsBlockLevelTag reports whether a tag is block-level by default.
func IsBlockLevelTag(tag string) bool {
	switch tag {
	case "html", "body", "address", "article", "aside", "blockquote", "center",
		"details", "dialog", "dd", "div", "dl", "dt", "fieldset", "figcaption",
		"figure", "footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "menu", "nav", "ol", "p", "pre",
		"section", "summary", "table", "thead", "tbody", "tfoot", "tr", "td", "th",
		"caption", "ul", "legend", "option", "optgroup":
		return true
	}
	return false
}

// IsHiddenTag reports whether a tag generates no box by default.
func IsHiddenTag(tag string) bool {
	switch tag {
	case "head", "title", "meta", "link", "script", "style", "base",
		"template", "noscript", "param", "source", "track", "datalist":
		return true
	}
	return false
}

// Parse parses a complete HTML document from a string.
func Parse(markup string) (*Document, error) {
	return NewParser().Parse(strings.NewReader(markup))
}

// ParseReader parses a complete HTML document from r.
func ParseReader(r io.Reader) (*Document, error) {
	return NewParser().Parse(r)
}
