package layout

import (
	"unicode/utf8"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/text"
)

// InlineBoxNode holds one run of inline-level content of a block. It always
// contains exactly one line box; runs are never wrapped.
type InlineBoxNode struct {
	nodeBase
	line *LineBoxNode
}

func (ib *InlineBoxNode) Children() []Node {
	if ib.line == nil {
		return nil
	}
	return []Node{ib.line}
}

// Line returns the inline box's line box.
func (ib *InlineBoxNode) Line() *LineBoxNode { return ib.line }

// LineBoxNode is a horizontal line of text runs, markers and inline-blocks.
type LineBoxNode struct {
	nodeBase
	items []LineItem
}

func (l *LineBoxNode) Children() []Node {
	out := make([]Node, len(l.items))
	for i, it := range l.items {
		out[i] = it
	}
	return out
}

// Items returns the line's content in order.
func (l *LineBoxNode) Items() []LineItem { return l.items }

func (l *LineBoxNode) add(it LineItem) { l.items = append(l.items, it) }

// segment is the state of one inline run while it is being built.
type segment struct {
	ib      *InlineBoxNode
	line    *LineBoxNode
	env     *Env
	flowTop float64

	x          float64
	lineHeight float64
	haveHeight bool
	emitted    bool

	stack    InlineStack
	carried  InlineStack
	reopened bool
}

// LayoutSegment consumes one run of inline-level tokens from w into a single
// line box starting at flowTop. open holds the inline elements still open from
// the previous run of the same block; the elements open at the end of this run
// are returned for the next one. It reports false when nothing was emitted, in
// which case the inline box must be discarded.
func (ib *InlineBoxNode) LayoutSegment(w *Walker, cb Containing, flowTop float64, open InlineStack, env *Env) (bool, InlineStack) {
	s := &segment{
		ib:       ib,
		env:      env,
		flowTop:  flowTop,
		x:        cb.X,
		stack:    open.Clone(),
		carried:  open.Clone(),
		reopened: len(open) == 0,
	}
	s.line = env.Factory.NewLineBox(ib.dom, ib)
	ib.line = s.line

run:
	for {
		tok, ok := w.Peek()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokenStart:
			switch env.display(tok.Node) {
			case DisplayNone:
				w.Consume(false)
			case DisplayBlock:
				break run
			case DisplayInlineBlock:
				s.inlineBlock(tok.Node, cb)
				w.Consume(false)
			default:
				s.reopen()
				s.stack = s.stack.Push(tok.Node)
				s.marker(tok.Node, KindInlineStart, false, s.stack)
				w.Consume(true)
			}

		case TokenEnd:
			if s.stack.Contains(tok.Node) {
				s.reopen()
				s.marker(tok.Node, KindInlineEnd, false, s.stack[:s.stack.Index(tok.Node)+1])
				s.stack = s.stack.PopThrough(tok.Node)
			}
			w.Consume(true)

		case TokenText:
			remaining := w.Remaining()
			if remaining == "" {
				w.Consume(true)
				continue
			}
			s.reopen()
			s.textRun(tok, remaining)
			w.ConsumeText(utf8.RuneCountInString(remaining))
		}
	}

	if !s.emitted {
		return false, open
	}

	// Close what is still open for painting; it reopens in the next run.
	for i := len(s.stack) - 1; i >= 0; i-- {
		s.markerSynthetic(s.stack[i], KindInlineEnd, s.stack[:i+1])
	}

	s.finish(cb)
	return true, s.stack
}

// reopen emits synthetic start markers for the carried elements, outermost
// first, the first time content is about to be emitted.
func (s *segment) reopen() {
	if s.reopened {
		return
	}
	s.reopened = true
	for i, el := range s.carried {
		s.markerSynthetic(el, KindInlineStart, s.carried[:i+1])
	}
}

func (s *segment) marker(el *html.Node, kind Kind, synthetic bool, snapshot InlineStack) {
	m := s.env.Factory.NewMarker(el, s.line, kind, synthetic, snapshot.Clone())
	m.box.setOuter(Rect{X: s.x, Y: s.flowTop})
	s.line.add(m)
	s.emitted = true
}

func (s *segment) markerSynthetic(el *html.Node, kind Kind, snapshot InlineStack) {
	s.marker(el, kind, true, snapshot)
}

func (s *segment) inlineBlock(el *html.Node, cb Containing) {
	s.reopen()
	n := s.env.Factory.NewInlineBlock(el, s.line)
	n.LayoutAtomic(cb, s.x, s.flowTop, s.env)
	s.line.add(n)
	s.x += n.box.Outer.Width + n.box.Margin.Horizontal()
	s.grow(n.box.Outer.Height + n.box.Margin.Vertical())
	s.emitted = true
}

func (s *segment) textRun(tok Token, content string) {
	styleNode := s.stack.Innermost()
	if styleNode == nil {
		styleNode = s.ib.dom
	}
	style := s.env.style(styleNode)
	font := FontFor(style)
	lineHeight := css.LineHeight(style)

	m := s.env.Metrics.Measure(text.Request{
		Text:       content,
		FontSize:   font.Size,
		LineHeight: lineHeight,
		Font:       font.String(),
	})

	run := s.env.Factory.NewTextRun(tok.Node, s.line, TextRun{
		Text:    content,
		Offset:  tok.Offset,
		Font:    font,
		Metrics: m,
		Style:   styleNode,
		Stack:   s.stack.Clone(),
	})
	run.box.setOuter(Rect{X: s.x, Y: s.flowTop, Width: m.Width})
	s.line.add(run)

	s.x += m.Width
	s.grow(max(m.Height, lineHeight))
	s.emitted = true
}

func (s *segment) grow(h float64) {
	if !s.haveHeight || h > s.lineHeight {
		s.lineHeight = h
	}
	s.haveHeight = true
}

// finish applies the line height to every text run and marker and sizes the
// line box and the inline box to the full containing width.
func (s *segment) finish(cb Containing) {
	if !s.haveHeight {
		s.lineHeight = css.LineHeight(s.env.style(s.ib.dom))
	}
	for _, it := range s.line.items {
		switch n := it.(type) {
		case *TextRunNode:
			r := n.box.Outer
			r.Height = s.lineHeight
			n.box.setOuter(r)
		case *MarkerNode:
			r := n.box.Outer
			r.Height = s.lineHeight
			n.box.setOuter(r)
		}
	}
	r := Rect{X: cb.X, Y: s.flowTop, Width: cb.Width, Height: s.lineHeight}
	s.line.box.setOuter(r)
	s.ib.box.setOuter(r)
}
