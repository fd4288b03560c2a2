package layout

import "boxwalk/pkg/html"

type TokenKind int

const (
	TokenStart TokenKind = iota
	TokenEnd
	TokenText
)

func (k TokenKind) String() string {
	switch k {
	case TokenStart:
		return "start"
	case TokenEnd:
		return "end"
	case TokenText:
		return "text"
	}
	return "unknown"
}

// Token is one entry of a walker's stream.
type Token struct {
	Kind TokenKind
	Node *html.Node
	// Match is the index of the paired token: the end for a start token and
	// the start for an end token. Unused for text.
	Match int
	// Offset is the number of runes of a text token already consumed.
	Offset int

	runes []rune
}

// Position identifies a point in the stream, including progress inside a
// text token.
type Position struct {
	Index  int
	Offset int
}

// Walker flattens the descendants of an element into start, end and text
// tokens in document order. Text is consumed incrementally without touching
// the DOM.
type Walker struct {
	tokens []Token
	pos    int
	offset int
}

// NewWalker builds the token stream for root's descendants. root itself does
// not appear in the stream.
func NewWalker(root *html.Node) *Walker {
	w := &Walker{}
	if root != nil {
		for _, child := range root.Children {
			w.flatten(child)
		}
	}
	return w
}

func (w *Walker) flatten(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.tokens = append(w.tokens, Token{Kind: TokenText, Node: n, runes: []rune(n.Text)})
	case html.ElementNode:
		start := len(w.tokens)
		w.tokens = append(w.tokens, Token{Kind: TokenStart, Node: n})
		for _, child := range n.Children {
			w.flatten(child)
		}
		end := len(w.tokens)
		w.tokens = append(w.tokens, Token{Kind: TokenEnd, Node: n, Match: start})
		w.tokens[start].Match = end
	}
}

// Len returns the total number of tokens in the stream.
func (w *Walker) Len() int { return len(w.tokens) }

// Peek returns the next unconsumed token. Empty and fully consumed text
// tokens are skipped.
func (w *Walker) Peek() (Token, bool) {
	for w.pos < len(w.tokens) {
		t := w.tokens[w.pos]
		if t.Kind == TokenText && w.offset >= len(t.runes) {
			w.pos++
			w.offset = 0
			continue
		}
		t.Offset = w.offset
		return t, true
	}
	return Token{}, false
}

// Consume advances past the next token. With drillDown false a start token is
// skipped together with its whole subtree.
func (w *Walker) Consume(drillDown bool) {
	t, ok := w.Peek()
	if !ok {
		return
	}
	if t.Kind == TokenStart && !drillDown {
		w.pos = t.Match + 1
	} else {
		w.pos++
	}
	w.offset = 0
}

// ConsumeText advances n runes into the current text token. The token is
// dropped once fully consumed. It is a no-op when the next token is not text.
func (w *Walker) ConsumeText(n int) {
	t, ok := w.Peek()
	if !ok || t.Kind != TokenText || n <= 0 {
		return
	}
	w.offset += n
	if w.offset >= len(t.runes) {
		w.pos++
		w.offset = 0
	}
}

// Remaining returns the unconsumed part of the current text token, or "".
func (w *Walker) Remaining() string {
	t, ok := w.Peek()
	if !ok || t.Kind != TokenText {
		return ""
	}
	return string(t.runes[w.offset:])
}

// Pos returns the cursor.
func (w *Walker) Pos() Position {
	return Position{Index: w.pos, Offset: w.offset}
}

// Done reports whether the stream is exhausted.
func (w *Walker) Done() bool {
	_, ok := w.Peek()
	return !ok
}
